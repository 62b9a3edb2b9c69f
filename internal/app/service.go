package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"lexside/api/internal/config"
	"lexside/api/internal/export"
	"lexside/api/internal/party"
	"lexside/api/internal/session"
	"lexside/api/internal/util"
)

type sessionStore interface {
	Save(context.Context, session.Record) error
	Load(context.Context, string) (session.Record, error)
	Delete(context.Context, string) error
	Ping(context.Context) error
}

type uploadArchive interface {
	Put(ctx context.Context, sessionID, filename string, data []byte, contentType string) error
	Remove(ctx context.Context, sessionID string) error
}

type textExtractor interface {
	Text(filename string, data []byte) string
}

type partyDetector interface {
	Detect(ctx context.Context, docText string) (party.Detection, error)
	Sufficient(party.Detection) bool
}

type reportAnalyzer interface {
	Analyze(ctx context.Context, partyName, docText string) (string, error)
}

type reportExporter interface {
	Export(req export.Request) (*export.Result, error)
}

// Service drives the linear session flow: upload, detect, select, analyze,
// display. Each step loads the record, acts, and writes it back whole.
type Service struct {
	cfg      config.Config
	sessions sessionStore
	archive  uploadArchive // nil when archiving is not configured
	extract  textExtractor
	detect   partyDetector
	analyze  reportAnalyzer
	export   reportExporter
}

func New(cfg config.Config, sessions sessionStore, extract textExtractor, detect partyDetector, analyze reportAnalyzer, exporter reportExporter) *Service {
	return &Service{
		cfg:      cfg,
		sessions: sessions,
		extract:  extract,
		detect:   detect,
		analyze:  analyze,
		export:   exporter,
	}
}

// WithArchive enables object-storage staging of uploaded originals.
func (s *Service) WithArchive(archive uploadArchive) *Service {
	s.archive = archive
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}

// CreateSession extracts the uploaded document, runs party detection with
// its one-shot retry, and stores a fresh session record.
func (s *Service) CreateSession(ctx context.Context, filename string, data []byte, contentType string) (session.Record, error) {
	if len(data) == 0 {
		return session.Record{}, domainError(http.StatusBadRequest, "EMPTY_UPLOAD", "Uploaded file is empty", nil)
	}

	docText := s.extract.Text(filename, data)

	det, err := s.detect.Detect(ctx, docText)
	if err != nil {
		return session.Record{}, fmt.Errorf("detect parties: %w", err)
	}

	now := time.Now()
	rec := session.Record{
		ID:         util.NewID("sess"),
		Stage:      session.StageSelecting,
		SourceName: filename,
		Document:   docText,
		Summary:    det.Summary,
		Parties:    det.Parties,
		CreatedAt:  now,
	}
	if !s.detect.Sufficient(det) {
		rec.Stage = session.StageNeedsParties
		rec.Warning = fmt.Sprintf("Could not identify at least %d contracting parties. Enter the party names manually.", s.cfg.MinParties)
	}

	if err := s.sessions.Save(ctx, rec); err != nil {
		return session.Record{}, fmt.Errorf("save session: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.Put(ctx, rec.ID, filename, data, contentType); err != nil {
			log.Printf("WARNING: archive upload failed for %s: %v", rec.ID, err)
		}
	}

	return rec, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (session.Record, error) {
	return s.sessions.Load(ctx, id)
}

// SetParties is the manual-entry fallback: names arrive as a list or as one
// comma-separated string and pass through the same normalization as detection.
func (s *Service) SetParties(ctx context.Context, id string, names []string, freeText string) (session.Record, error) {
	rec, err := s.sessions.Load(ctx, id)
	if err != nil {
		return session.Record{}, err
	}

	candidates := append([]string(nil), names...)
	if strings.TrimSpace(freeText) != "" {
		candidates = append(candidates, strings.Split(freeText, ",")...)
	}

	normalized := party.Normalize(candidates)
	if len(normalized) == 0 {
		return session.Record{}, domainError(http.StatusUnprocessableEntity, "NO_VALID_PARTIES",
			"No usable party names after normalization", nil)
	}

	rec.Parties = normalized
	rec.Stage = session.StageSelecting
	rec.Warning = ""
	if err := s.sessions.Save(ctx, rec); err != nil {
		return session.Record{}, fmt.Errorf("save session: %w", err)
	}
	return rec, nil
}

// Analyze generates the perspective report for one of the session's parties.
func (s *Service) Analyze(ctx context.Context, id, partyName string) (session.Record, error) {
	rec, err := s.sessions.Load(ctx, id)
	if err != nil {
		return session.Record{}, err
	}
	if rec.Stage == session.StageNeedsParties {
		return session.Record{}, domainError(http.StatusConflict, "PARTIES_REQUIRED",
			"Party names must be provided before analysis", nil)
	}

	chosen := ""
	for _, p := range rec.Parties {
		if strings.EqualFold(strings.TrimSpace(partyName), p) {
			chosen = p
			break
		}
	}
	if chosen == "" {
		return session.Record{}, domainError(http.StatusUnprocessableEntity, "UNKNOWN_PARTY",
			"Party is not one of the session's detected parties", map[string]any{"parties": rec.Parties})
	}

	report, err := s.analyze.Analyze(ctx, chosen, rec.Document)
	if err != nil {
		return session.Record{}, fmt.Errorf("analyze for %q: %w", chosen, err)
	}

	rec.SelectedParty = chosen
	rec.Report = report
	rec.Stage = session.StageReported
	if err := s.sessions.Save(ctx, rec); err != nil {
		return session.Record{}, fmt.Errorf("save session: %w", err)
	}
	return rec, nil
}

func (s *Service) Report(ctx context.Context, id string) (session.Record, error) {
	rec, err := s.sessions.Load(ctx, id)
	if err != nil {
		return session.Record{}, err
	}
	if rec.Stage != session.StageReported {
		return session.Record{}, domainError(http.StatusConflict, "NO_REPORT",
			"No report has been generated for this session", nil)
	}
	return rec, nil
}

// ExportReport renders the stored report as a download.
func (s *Service) ExportReport(ctx context.Context, id string, format export.Format) (*export.Result, error) {
	rec, err := s.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.export.Export(export.Request{
		Format:   format,
		Title:    rec.SourceName,
		Party:    rec.SelectedParty,
		Markdown: rec.Report,
	})
}

// Reset clears the whole session: record and archived upload together.
func (s *Service) Reset(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if s.archive != nil {
		if err := s.archive.Remove(ctx, id); err != nil {
			log.Printf("WARNING: archive cleanup failed for %s: %v", id, err)
		}
	}
	return nil
}
