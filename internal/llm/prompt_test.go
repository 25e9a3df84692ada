package llm

import (
	"strings"
	"testing"
)

func TestRender_SubstitutesPlaceholder(t *testing.T) {
	got := Render("Summarize:\n"+Placeholder+"\nEnd.", "THE DOC")
	if got != "Summarize:\nTHE DOC\nEnd." {
		t.Errorf("Render() = %q", got)
	}
	if strings.Contains(got, Placeholder) {
		t.Error("placeholder survived rendering")
	}
}

func TestRender_EmptyTemplateUsesDefault(t *testing.T) {
	got := Render("", "THE DOC")
	if !strings.Contains(got, "THE DOC") {
		t.Error("document text missing from rendered default template")
	}
	if strings.Contains(got, Placeholder) {
		t.Error("placeholder survived rendering")
	}
}

func TestRender_TemplateWithoutPlaceholderAppendsDoc(t *testing.T) {
	got := Render("Just extract everything.", "THE DOC")
	if !strings.HasSuffix(got, "THE DOC") {
		t.Errorf("document text not appended: %q", got)
	}
	if !strings.HasPrefix(got, "Just extract everything.") {
		t.Errorf("template text lost: %q", got)
	}
}

func TestBuildSystemPrompt_PinsContract(t *testing.T) {
	p := BuildSystemPrompt()
	for _, must := range []string{"JSON object", "section", "comments"} {
		if !strings.Contains(p, must) {
			t.Errorf("system prompt missing %q", must)
		}
	}
}
