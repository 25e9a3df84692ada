package llm

import (
	"context"
	"fmt"
)

// CompletionRequest carries everything a provider needs for one completion call.
type CompletionRequest struct {
	System      string  // system prompt (output contract)
	Prompt      string  // rendered user prompt with the document text substituted
	Model       string  // overrides the client default when non-empty
	Temperature float32 // 0..1
}

// Completer is the uniform provider capability the orchestrator depends on:
// submit a prompt to one named model, get raw text back or fail.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderError is a per-attempt provider failure. Retryable distinguishes
// transient conditions (rate limits, 5xx, network) from terminal ones
// (bad credentials, malformed request).
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when the failure happened before/without an HTTP status
	Retryable  bool
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// RetryableStatus classifies an HTTP status code. Auth and client errors won't
// heal on retry; rate limits, timeouts and server errors usually do.
func RetryableStatus(code int) bool {
	switch {
	case code == 408 || code == 429:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// NewProviderError wraps cause with retryability derived from the status code.
// A zero status means a transport-level failure, which is always retryable.
func NewProviderError(provider string, status int, cause error) *ProviderError {
	retryable := status == 0 || RetryableStatus(status)
	return &ProviderError{Provider: provider, StatusCode: status, Retryable: retryable, Cause: cause}
}
