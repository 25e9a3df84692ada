package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/doculens/doculens/constants"
	"github.com/doculens/doculens/internal/common"
	"github.com/doculens/doculens/internal/export"
	"github.com/doculens/doculens/internal/extract"
	"github.com/doculens/doculens/internal/history"
	"github.com/doculens/doculens/internal/llm"
	"github.com/doculens/doculens/internal/llm/gemini"
	"github.com/doculens/doculens/internal/llm/openai"
	"github.com/doculens/doculens/internal/pdf"
	"github.com/doculens/doculens/internal/pipeline"
	"github.com/doculens/doculens/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Provider clients: nil when the credential is absent; the orchestrator
	// decides availability per request.
	var primary, fallback llm.Completer
	if cfg.LLM.OpenAIKey != "" {
		primary = openai.NewClient(openai.Config{
			APIKey:  cfg.LLM.OpenAIKey,
			Model:   cfg.LLM.PrimaryModel,
			Timeout: cfg.LLM.Timeout,
		}, logger)
	}
	if cfg.LLM.GoogleKey != "" {
		fallback = gemini.NewClient(gemini.Config{
			APIKey:  cfg.LLM.GoogleKey,
			Model:   cfg.LLM.FallbackModel,
			Timeout: cfg.LLM.Timeout,
		}, logger)
	}
	if primary == nil && fallback == nil {
		logger.Warn("no provider credentials configured; extraction requests will fail",
			"hint", "set OPENAI_API_KEY and/or GOOGLE_API_KEY")
	}

	store, err := history.Open(cfg.History.DSN, logger)
	if err != nil {
		logger.Error("open history store", "dsn", cfg.History.DSN, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close history store", "error", err)
		}
	}()

	orch := extract.New(primary, fallback, logger)
	exporter := export.NewService(logger)
	proc := pipeline.NewProcessor(orch, exporter, store, extract.Config{
		PrimaryModel:  cfg.LLM.PrimaryModel,
		FallbackModel: cfg.LLM.FallbackModel,
		Temperature:   cfg.LLM.Temperature,
		MaxRetries:    cfg.LLM.MaxRetries,
		BaseDelay:     cfg.LLM.BaseDelay,
		MaxDelay:      cfg.LLM.MaxDelay,
		Jitter:        true,
	}, logger)

	loader := pdf.NewLoader(constants.MaxDocumentPages, logger)
	srv := server.New(proc, loader, store, cfg.Server.JWTSecret, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
