package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lexside/api/internal/analysis"
	"lexside/api/internal/app"
	"lexside/api/internal/archive"
	"lexside/api/internal/config"
	"lexside/api/internal/export"
	"lexside/api/internal/extract"
	"lexside/api/internal/llm"
	"lexside/api/internal/party"
	"lexside/api/internal/session"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sessions, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer sessions.Close()

	var client llm.Client
	switch cfg.LLMProvider {
	case "gemini":
		client, err = llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		client, err = llm.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout)
	}
	if err != nil {
		log.Fatalf("llm client (%s) failed: %v", cfg.LLMProvider, err)
	}

	service := app.New(cfg,
		sessions,
		extract.New(cfg.MaxDocChars),
		party.NewDetector(client, cfg.MinParties),
		analysis.New(client),
		export.NewService(),
	)

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		uploads, err := archive.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("minio connection failed: %v", err)
		}
		if err := uploads.EnsureBucket(ctx); err != nil {
			log.Fatalf("minio bucket setup failed: %v", err)
		}
		log.Printf("Archiving uploads to MinIO bucket %q", cfg.MinioBucket)
		service.WithArchive(uploads)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Lexside API listening on %s (llm=%s)", cfg.Addr, cfg.LLMProvider)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
