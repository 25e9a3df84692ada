package llm

import (
	"errors"
	"testing"
)

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
	}
	for _, tt := range tests {
		if got := RetryableStatus(tt.code); got != tt.want {
			t.Errorf("RetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestNewProviderError(t *testing.T) {
	cause := errors.New("connection refused")

	transport := NewProviderError("openai", 0, cause)
	if !transport.Retryable {
		t.Error("transport failure (status 0) must be retryable")
	}
	if !errors.Is(transport, cause) {
		t.Error("ProviderError must unwrap to its cause")
	}

	auth := NewProviderError("openai", 401, errors.New("bad key"))
	if auth.Retryable {
		t.Error("401 must not be retryable")
	}

	rate := NewProviderError("gemini", 429, errors.New("quota"))
	if !rate.Retryable {
		t.Error("429 must be retryable")
	}
}
