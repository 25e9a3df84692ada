// Package pipeline composes the extraction stages: orchestrate (retry +
// fallback, parse inside the loop) → validate → flatten → export. Each stage
// fails the run with its own typed error; a structural violation propagates
// without another retry and without touching the fallback provider.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/doculens/doculens/constants"
	"github.com/doculens/doculens/internal/document"
	"github.com/doculens/doculens/internal/export"
	"github.com/doculens/doculens/internal/extract"
	"github.com/doculens/doculens/internal/history"
)

// Input is one extraction request: normalized document text plus metadata.
type Input struct {
	Name           string // original filename, for logs and history
	Text           string
	PageCount      int
	PromptTemplate string // empty means the stock template
}

// Outcome carries everything a caller needs after a successful run.
type Outcome struct {
	JobID        uuid.UUID
	Document     *document.Document
	Rows         []document.Row
	XLSX         []byte
	Role         extract.Role
	Provider     string
	Model        string
	AttemptCount int
}

// Processor wires the stages together. The history store is optional; runs
// proceed even when recording fails.
type Processor struct {
	orch     *extract.Orchestrator
	exporter *export.Service
	store    *history.Store
	cfg      extract.Config
	log      *slog.Logger
}

func NewProcessor(orch *extract.Orchestrator, exporter *export.Service, store *history.Store, cfg extract.Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{orch: orch, exporter: exporter, store: store, cfg: cfg, log: logger}
}

// Run executes the full pipeline for one document. Every run gets a fresh job
// ID; no state is shared across runs, so concurrent calls need no coordination.
func (p *Processor) Run(ctx context.Context, in Input) (*Outcome, error) {
	jobID := uuid.New()
	start := time.Now()

	p.log.Info("pipeline.run.start",
		"job_id", jobID, "name", in.Name,
		"pages", in.PageCount, "text_bytes", len(in.Text),
	)

	res, err := p.orch.Extract(ctx, in.Text, in.PromptTemplate, p.cfg)
	if err != nil {
		p.recordFailure(ctx, jobID, in, nil, err)
		return nil, fmt.Errorf("extract: %w", err)
	}

	doc, err := document.Validate(res.Value)
	if err != nil {
		p.recordFailure(ctx, jobID, in, res, err)
		// Carry a bounded preview so the offending output is never lost.
		return nil, fmt.Errorf("response from %s (preview: %q): %w",
			res.Provider, document.Preview(res.Text), err)
	}

	rows := document.Flatten(doc)

	xlsx, err := p.exporter.WriteRows(rows)
	if err != nil {
		p.recordFailure(ctx, jobID, in, res, err)
		return nil, fmt.Errorf("export: %w", err)
	}

	if p.store != nil {
		job := history.Job{
			ID:           jobID.String(),
			Filename:     in.Name,
			PageCount:    in.PageCount,
			Provider:     res.Provider,
			Model:        res.Model,
			AttemptCount: res.AttemptCount,
			RowCount:     len(rows),
			Status:       string(constants.JobStatusOK),
		}
		if err := p.store.Record(ctx, job); err != nil {
			p.log.Warn("pipeline.history.record_failed", "job_id", jobID, "error", err)
		}
	}

	p.log.Info("pipeline.run.ok",
		"job_id", jobID, "name", in.Name,
		"provider", res.Provider, "role", string(res.Role),
		"attempts", res.AttemptCount, "rows", len(rows),
		"shape", doc.String(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &Outcome{
		JobID:        jobID,
		Document:     doc,
		Rows:         rows,
		XLSX:         xlsx,
		Role:         res.Role,
		Provider:     res.Provider,
		Model:        res.Model,
		AttemptCount: res.AttemptCount,
	}, nil
}

func (p *Processor) recordFailure(ctx context.Context, jobID uuid.UUID, in Input, res *extract.Result, cause error) {
	if p.store == nil {
		return
	}
	job := history.Job{
		ID:        jobID.String(),
		Filename:  in.Name,
		PageCount: in.PageCount,
		Status:    string(constants.JobStatusFailed),
		Error:     cause.Error(),
	}
	if res != nil {
		job.Provider = res.Provider
		job.Model = res.Model
		job.AttemptCount = res.AttemptCount
	}
	if err := p.store.Record(ctx, job); err != nil {
		p.log.Warn("pipeline.history.record_failed", "job_id", jobID, "error", err)
	}
}
