// extract runs the pipeline once over a local file and writes the workbook
// next to it: extract <input.(pdf|txt)> [output.xlsx]
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doculens/doculens/constants"
	"github.com/doculens/doculens/internal/common"
	"github.com/doculens/doculens/internal/export"
	"github.com/doculens/doculens/internal/extract"
	"github.com/doculens/doculens/internal/llm"
	"github.com/doculens/doculens/internal/llm/gemini"
	"github.com/doculens/doculens/internal/llm/openai"
	"github.com/doculens/doculens/internal/pdf"
	"github.com/doculens/doculens/internal/pipeline"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: extract <input.(pdf|txt)> [output.xlsx]")
		os.Exit(2)
	}
	inPath := os.Args[1]
	outPath := strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".xlsx"
	if len(os.Args) >= 3 {
		outPath = os.Args[2]
	}

	ext := filepath.Ext(inPath)
	if !constants.IsAllowedExt(ext) {
		logger.Error("unsupported input format", "ext", ext)
		os.Exit(2)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		logger.Error("read input", "path", inPath, "error", err)
		os.Exit(1)
	}

	loader := pdf.NewLoader(constants.MaxDocumentPages, logger)
	var doc *pdf.DocumentText
	if constants.NormalizeExt(ext) == "pdf" {
		doc, err = loader.LoadFromBytes(data)
	} else {
		doc, err = loader.LoadText(string(data))
	}
	if err != nil {
		logger.Error("load document", "path", inPath, "error", err)
		os.Exit(1)
	}

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

	orch := extract.New(primary, fallback, logger)
	proc := pipeline.NewProcessor(orch, export.NewService(logger), nil, extract.Config{
		PrimaryModel:  cfg.LLM.PrimaryModel,
		FallbackModel: cfg.LLM.FallbackModel,
		Temperature:   cfg.LLM.Temperature,
		MaxRetries:    cfg.LLM.MaxRetries,
		BaseDelay:     cfg.LLM.BaseDelay,
		MaxDelay:      cfg.LLM.MaxDelay,
		Jitter:        true,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	outcome, err := proc.Run(ctx, pipeline.Input{
		Name:      filepath.Base(inPath),
		Text:      doc.Text,
		PageCount: doc.PageCount,
	})
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, outcome.XLSX, 0o644); err != nil {
		logger.Error("write workbook", "path", outPath, "error", err)
		os.Exit(1)
	}

	logger.Info("done",
		"input", inPath, "output", outPath,
		"provider", outcome.Provider, "model", outcome.Model,
		"attempts", outcome.AttemptCount, "rows", len(outcome.Rows),
	)
}
