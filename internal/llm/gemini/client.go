package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doculens/doculens/internal/llm"
)

const providerName = "gemini"

// Name implements llm.Completer.
func (c *Client) Name() string { return providerName }

// Complete implements llm.Completer against the generateContent endpoint with
// a JSON response MIME hint. Candidate parts are concatenated; interpreting
// the text is the caller's business.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	c.log.Info("gemini.complete.start",
		"req_id", rid,
		"model", model,
		"temp", req.Temperature,
		"prompt_len", len(req.Prompt),
	)

	body := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": req.Prompt}},
			},
		},
		"generationConfig": map[string]any{
			"temperature":      req.Temperature,
			"responseMimeType": "application/json",
		},
	}
	if req.System != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": req.System}},
		}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + model + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("gemini.complete.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", llm.NewProviderError(providerName, status, err)
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		c.log.Error("gemini.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", llm.NewProviderError(providerName, 0, fmt.Errorf("decode gemini response: %w", err))
	}
	if len(gc.Candidates) == 0 {
		c.log.Error("gemini.complete.no_candidates",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", llm.NewProviderError(providerName, 0, fmt.Errorf("no candidates in gemini response"))
	}

	var sb strings.Builder
	for _, p := range gc.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	content := sb.String()

	c.log.Info("gemini.complete.ok",
		"req_id", rid,
		"model", model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
