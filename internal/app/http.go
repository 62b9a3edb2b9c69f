package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"lexside/api/internal/export"
	"lexside/api/internal/llm"
	"lexside/api/internal/session"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) >= 2 && parts[0] == "api" && parts[1] == "sessions" {
		switch {
		case len(parts) == 2 && r.Method == http.MethodPost:
			s.handleCreateSession(w, r)
			return
		case len(parts) == 3 && r.Method == http.MethodGet:
			s.handleGetSession(w, r, parts[2])
			return
		case len(parts) == 3 && r.Method == http.MethodDelete:
			s.handleReset(w, r, parts[2])
			return
		case len(parts) == 4 && parts[3] == "parties" && r.Method == http.MethodPost:
			s.handleSetParties(w, r, parts[2])
			return
		case len(parts) == 4 && parts[3] == "analyze" && r.Method == http.MethodPost:
			s.handleAnalyze(w, r, parts[2])
			return
		case len(parts) == 4 && parts[3] == "report" && r.Method == http.MethodGet:
			s.handleReport(w, r, parts[2])
			return
		case len(parts) == 5 && parts[3] == "report" && parts[4] == "export" && r.Method == http.MethodGet:
			s.handleExport(w, r, parts[2])
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"redis": map[string]any{"status": "ok"},
	}

	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["redis"] = map[string]any{
			"status": "error",
			"error":  err.Error(),
		}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.service.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.service.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Upload must be multipart form data within the size limit", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", `Form field "file" is required`, nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Could not read uploaded file", nil)
		return
	}

	rec, err := s.service.CreateSession(r.Context(), header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(rec))
}

func (s *HTTPServer) handleGetSession(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.GetSession(r.Context(), id)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

func (s *HTTPServer) handleSetParties(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Parties  []string `json:"parties"`
		FreeText string   `json:"freeText"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	rec, err := s.service.SetParties(r.Context(), id, body.Parties, body.FreeText)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

func (s *HTTPServer) handleAnalyze(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Party string `json:"party"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	rec, err := s.service.Analyze(r.Context(), id, body.Party)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": rec.ID,
		"stage":     rec.Stage,
		"party":     rec.SelectedParty,
		"report":    rec.Report,
	})
}

func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.Report(r.Context(), id)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": rec.ID,
		"party":     rec.SelectedParty,
		"report":    rec.Report,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, id string) {
	format := export.Format(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		format = export.FormatPDF
	}

	result, err := s.service.ExportReport(r.Context(), id, format)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (s *HTTPServer) handleReset(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.Reset(r.Context(), id); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// sessionResponse shapes a record for clients. The document text itself stays
// server-side; only its size is reported.
func sessionResponse(rec session.Record) map[string]any {
	resp := map[string]any{
		"sessionId":     rec.ID,
		"stage":         rec.Stage,
		"sourceName":    rec.SourceName,
		"documentChars": len([]rune(rec.Document)),
		"parties":       rec.Parties,
	}
	if rec.Summary != "" {
		resp["summary"] = rec.Summary
	}
	if rec.SelectedParty != "" {
		resp["party"] = rec.SelectedParty
	}
	if rec.Warning != "" {
		resp["warning"] = rec.Warning
	}
	return resp
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found or expired", nil
	}
	if errors.Is(err, llm.ErrRateLimited) {
		return http.StatusTooManyRequests, "LLM_RATE_LIMITED", "Language model rate limited, try again shortly", nil
	}
	if errors.Is(err, llm.ErrUnavailable) {
		return http.StatusBadGateway, "LLM_UNAVAILABLE", "Language model unavailable", nil
	}
	if errors.Is(err, export.ErrUnsupportedFormat) {
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Export format must be pdf or docx", nil
	}
	if errors.Is(err, export.ErrPDFDependencyMissing) || errors.Is(err, export.ErrDOCXDependencyMissing) {
		return http.StatusNotImplemented, "EXPORT_UNAVAILABLE", "Export dependency not installed on this host", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
