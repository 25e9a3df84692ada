package llm

import (
	"strings"
)

// Placeholder is the single substitution point a prompt template must contain.
// The orchestrator treats the rest of the template as opaque text.
const Placeholder = "{document_text}"

// BuildSystemPrompt composes the system message that pins the output contract:
// a single JSON object whose sections are either flat field maps or lists of
// flat field maps. Field and section names are left to the model on purpose.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a document data extractor. Return ONLY a JSON object, no prose and no Markdown fences.",
		"Top level: an object whose keys are section names you choose from the document (e.g. 'Basic Details', 'Education Details', 'Skills').",
		"Each section value is either an object mapping field names to values, or an array of such objects when the section repeats (one object per record).",
		"Field values must be strings, numbers, booleans, or flat arrays of those. Never nest objects inside a section's fields.",
		"Extract every piece of information present; do not invent fields that are not in the document.",
		"When a remark or note accompanies a record, put it in a 'comments' field inside that record.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// DefaultTemplate is the stock extraction prompt used when the caller supplies
// none. It carries exactly one substitution point for the document text.
const DefaultTemplate = `Extract all structured data from the following document.

Group related fields into named sections. Sections that describe repeated records
(jobs, degrees, projects) must be arrays of flat objects, in document order.
Keep the original wording of values; do not summarize.

Document:
` + Placeholder + `

Return only the JSON object.`

// Render substitutes the document text into the template. A template without
// the placeholder gets the document appended, so no text is ever dropped.
func Render(tmpl, docText string) string {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	if strings.Contains(tmpl, Placeholder) {
		return strings.ReplaceAll(tmpl, Placeholder, docText)
	}
	return tmpl + "\n\n" + docText
}
