package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// previewLimit bounds the amount of offending model output carried inside a
// MalformedResponseError for diagnostics.
const previewLimit = 1000

// EmptyResponseError means the model returned no usable text.
type EmptyResponseError struct{}

func (*EmptyResponseError) Error() string { return "model returned an empty response" }

// MalformedResponseError means no JSON object could be located or parsed in
// the model output. Preview carries up to previewLimit characters of the raw
// text so the failure is diagnosable without re-running the model.
type MalformedResponseError struct {
	Preview string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v (preview: %q)", e.Cause, e.Preview)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// Preview truncates raw text to the diagnostic bound.
func Preview(raw string) string {
	if len(raw) > previewLimit {
		return raw[:previewLimit]
	}
	return raw
}

// Parse extracts the JSON object from raw model text, tolerating surrounding
// prose and Markdown code fences by slicing from the first '{' to the last
// '}'. Only syntactic validity is enforced here; the structural contract is
// the validator's job.
func Parse(raw string) (Value, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{}, &EmptyResponseError{}
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start == -1 || end == -1 || end < start {
		return Value{}, &MalformedResponseError{
			Preview: Preview(trimmed),
			Cause:   fmt.Errorf("no JSON object found"),
		}
	}

	payload := trimmed[start : end+1]
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, &MalformedResponseError{
			Preview: Preview(trimmed),
			Cause:   fmt.Errorf("decode json: %w", err),
		}
	}
	return v, nil
}
