package llm

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("custom header = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"q":"hello"}` {
			t.Errorf("body = %s", body)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL,
		map[string]string{"q": "hello"}, map[string]string{"X-Custom": "yes"}, discardLogger())
	if err != nil {
		t.Fatalf("SendJSON() error = %v", err)
	}
	if status != http.StatusOK || string(raw) != `{"ok":true}` {
		t.Errorf("status=%d raw=%s", status, raw)
	}
}

func TestSendJSON_Non2xxReturnsBodyAndError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit"}`))
	}))
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]string{}, nil, discardLogger())
	if err == nil {
		t.Fatal("SendJSON() error = nil, want non-2xx error")
	}
	if status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", status)
	}
	if string(raw) != `{"error":"rate limit"}` {
		t.Errorf("error body lost: %s", raw)
	}
}

func TestSendJSON_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := SendJSON(ctx, srv.Client(), srv.URL, map[string]string{}, nil, discardLogger())
	if err == nil {
		t.Fatal("SendJSON() error = nil, want context error")
	}
}
