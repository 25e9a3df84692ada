// Package extract drives the primary/fallback extraction loop: retry with
// exponential backoff against the primary provider, then the fallback,
// parsing each response and aggregating failure context along the way.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/doculens/doculens/constants"
	"github.com/doculens/doculens/internal/document"
	"github.com/doculens/doculens/internal/llm"
)

// Role names which configured backend produced a result.
type Role string

const (
	RolePrimary  Role = "primary"
	RoleFallback Role = "fallback"
)

// Config is the per-call extraction configuration. It is supplied by the
// caller, validated at the orchestrator boundary, and never mutated.
type Config struct {
	PrimaryModel  string
	FallbackModel string
	Temperature   float32
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	Jitter        bool
}

// withDefaults fills zero values; Validate then rejects out-of-range input.
func (c Config) withDefaults() Config {
	if c.PrimaryModel == "" {
		c.PrimaryModel = constants.DefaultPrimaryModel
	}
	if c.FallbackModel == "" {
		c.FallbackModel = constants.DefaultFallbackModel
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = constants.DefaultMaxRetries
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = constants.DefaultBaseDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = constants.DefaultMaxDelay
	}
	return c
}

func (c Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature must be in [0,1], got %v", c.Temperature)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be >= 1, got %d", c.MaxRetries)
	}
	if c.BaseDelay < 0 || c.MaxDelay < c.BaseDelay {
		return fmt.Errorf("backoff delays invalid: base=%s max=%s", c.BaseDelay, c.MaxDelay)
	}
	return nil
}

// Result is the raw outcome of a successful extraction call: which backend
// answered, the raw text, how many calls it took, and the parsed JSON tree.
// Ephemeral: produced once per call, consumed by the validator, not cached.
type Result struct {
	Role         Role
	Provider     string
	Model        string
	Text         string
	AttemptCount int
	Value        document.Value
}

// Orchestrator runs the retry/fallback schedule over two provider clients.
// Either client may be nil (credential absent); both nil is an immediate
// NoProviderAvailableError. Retries are sequential, never parallel speculative
// calls, to control cost.
type Orchestrator struct {
	primary  llm.Completer
	fallback llm.Completer
	log      *slog.Logger

	// sleep is swapped out in tests so backoff schedules run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(primary, fallback llm.Completer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		primary:  primary,
		fallback: fallback,
		log:      logger,
		sleep:    sleepCtx,
	}
}

type target struct {
	role   Role
	client llm.Completer
	model  string
}

// Extract submits the document text to the primary provider with retries,
// falling back to the secondary on exhaustion or a non-retryable failure.
// Empty and malformed responses count as retryable attempt failures; the
// first parseable response short-circuits.
func (o *Orchestrator) Extract(ctx context.Context, docText, promptTemplate string, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("extraction config: %w", err)
	}
	if strings.TrimSpace(docText) == "" {
		return nil, &EmptyDocumentError{}
	}

	var targets []target
	if o.primary != nil {
		targets = append(targets, target{RolePrimary, o.primary, cfg.PrimaryModel})
	}
	if o.fallback != nil {
		targets = append(targets, target{RoleFallback, o.fallback, cfg.FallbackModel})
	}
	if len(targets) == 0 {
		return nil, &NoProviderAvailableError{}
	}

	req := llm.CompletionRequest{
		System:      llm.BuildSystemPrompt(),
		Prompt:      llm.Render(promptTemplate, docText),
		Temperature: cfg.Temperature,
	}

	start := time.Now()
	var attempts []Attempt
	total := 0

	for _, t := range targets {
		req.Model = t.model

		for n := 1; n <= cfg.MaxRetries; n++ {
			if n > 1 {
				if err := o.sleep(ctx, backoffDelay(cfg, n-1)); err != nil {
					return nil, fmt.Errorf("extraction cancelled during backoff: %w", err)
				}
			}
			total++

			text, err := t.client.Complete(ctx, req)
			if err != nil {
				attempts = append(attempts, Attempt{Provider: t.client.Name(), Number: n, Err: err})
				var perr *llm.ProviderError
				if errors.As(err, &perr) && !perr.Retryable {
					o.log.Warn("extract.provider.non_retryable",
						"provider", t.client.Name(), "role", string(t.role),
						"attempt", n, "error", err,
					)
					break // straight to the next provider
				}
				o.log.Warn("extract.provider.attempt_failed",
					"provider", t.client.Name(), "role", string(t.role),
					"attempt", n, "error", err,
				)
				continue
			}

			value, err := document.Parse(text)
			if err != nil {
				// Empty/malformed output is treated like any other transient
				// provider failure and feeds back into the retry loop.
				attempts = append(attempts, Attempt{Provider: t.client.Name(), Number: n, Err: err})
				o.log.Warn("extract.parse.attempt_failed",
					"provider", t.client.Name(), "role", string(t.role),
					"attempt", n, "error", err,
				)
				continue
			}

			o.log.Info("extract.ok",
				"provider", t.client.Name(), "role", string(t.role),
				"model", t.model, "attempts", total,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return &Result{
				Role:         t.role,
				Provider:     t.client.Name(),
				Model:        t.model,
				Text:         text,
				AttemptCount: total,
				Value:        value,
			}, nil
		}
	}

	o.log.Error("extract.exhausted",
		"attempts", len(attempts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil, &ExhaustedProvidersError{Attempts: attempts}
}

// backoffDelay computes the pause before attempt n+1:
// min(base * 2^(n-1), max), optionally jittered upward by up to 25%.
func backoffDelay(cfg Config, completed int) time.Duration {
	d := cfg.BaseDelay
	for i := 1; i < completed; i++ {
		d *= 2
		if d >= cfg.MaxDelay {
			d = cfg.MaxDelay
			break
		}
	}
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	if cfg.Jitter && d > 0 {
		d += time.Duration(rand.Float64() * 0.25 * float64(d))
		if d > cfg.MaxDelay {
			d = cfg.MaxDelay
		}
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
