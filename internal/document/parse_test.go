package document

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_ValidJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "bare object", raw: `{"Basic Details": {"name": "John"}}`},
		{name: "markdown fence", raw: "```json\n{\"Basic Details\": {\"name\": \"John\"}}\n```"},
		{name: "fence without language", raw: "```\n{\"Basic Details\": {\"name\": \"John\"}}\n```"},
		{name: "surrounding prose", raw: "Here is the extracted data:\n{\"Basic Details\": {\"name\": \"John\"}}\nLet me know if you need more."},
		{name: "leading whitespace", raw: "   \n\t{\"Basic Details\": {\"name\": \"John\"}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if v.Kind != KindObject {
				t.Fatalf("Parse() kind = %v, want object", v.Kind)
			}
			if len(v.Members) != 1 || v.Members[0].Key != "Basic Details" {
				t.Fatalf("Parse() members = %+v", v.Members)
			}
		})
	}
}

func TestParse_PreservesKeyOrderAndNumberLiterals(t *testing.T) {
	v, err := Parse(`{"b": 1, "a": 2.50, "c": {"z": true, "y": "x"}}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	gotKeys := []string{v.Members[0].Key, v.Members[1].Key, v.Members[2].Key}
	wantKeys := []string{"b", "a", "c"}
	for i := range wantKeys {
		if gotKeys[i] != wantKeys[i] {
			t.Fatalf("key order = %v, want %v", gotKeys, wantKeys)
		}
	}
	if got := v.Members[1].Value.Number.String(); got != "2.50" {
		t.Errorf("number literal = %q, want %q (source text must survive)", got, "2.50")
	}
	inner := v.Members[2].Value
	if inner.Members[0].Key != "z" || inner.Members[1].Key != "y" {
		t.Errorf("nested key order lost: %+v", inner.Members)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t  \n"} {
		_, err := Parse(raw)
		var emptyErr *EmptyResponseError
		if !errors.As(err, &emptyErr) {
			t.Errorf("Parse(%q) error = %v, want EmptyResponseError", raw, err)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no object", raw: "I could not extract anything from this document."},
		{name: "truncated object", raw: `{"Basic Details": {"name": `},
		{name: "array only", raw: `[1, 2, 3]`},
		{name: "unbalanced braces", raw: `} nonsense {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			var malErr *MalformedResponseError
			if !errors.As(err, &malErr) {
				t.Fatalf("Parse() error = %v, want MalformedResponseError", err)
			}
			if malErr.Preview == "" {
				t.Error("MalformedResponseError carries no preview")
			}
		})
	}
}

func TestParse_PreviewBounded(t *testing.T) {
	raw := "garbage " + strings.Repeat("x", 5000)
	_, err := Parse(raw)
	var malErr *MalformedResponseError
	if !errors.As(err, &malErr) {
		t.Fatalf("Parse() error = %v, want MalformedResponseError", err)
	}
	if len(malErr.Preview) > previewLimit {
		t.Errorf("preview length = %d, want <= %d", len(malErr.Preview), previewLimit)
	}
}
