package extract

import (
	"fmt"
	"strings"
)

// EmptyDocumentError is the input guard: the document text was empty or
// whitespace-only, so no provider call was ever attempted.
type EmptyDocumentError struct{}

func (*EmptyDocumentError) Error() string { return "document text is empty" }

// NoProviderAvailableError means neither provider has a credential configured.
// It bypasses the retry machinery entirely.
type NoProviderAvailableError struct{}

func (*NoProviderAvailableError) Error() string {
	return "no LLM provider configured: set OPENAI_API_KEY and/or GOOGLE_API_KEY"
}

// Attempt records one failed provider call, in chronological order.
type Attempt struct {
	Provider string // provider client name ("openai", "gemini")
	Number   int    // 1-based attempt number within that provider's loop
	Err      error
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s attempt %d: %v", a.Provider, a.Number, a.Err)
}

// ExhaustedProvidersError surfaces the full attempt history after both
// providers ran out of retries. Parse errors inside carry bounded previews of
// the raw model output, so nothing is silently discarded.
type ExhaustedProvidersError struct {
	Attempts []Attempt
}

func (e *ExhaustedProvidersError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("all providers exhausted after %d attempts: %s",
		len(e.Attempts), strings.Join(parts, "; "))
}
