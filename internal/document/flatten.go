package document

import (
	"fmt"
	"strings"
)

// listDelimiter joins primitive-list field values into one cell.
const listDelimiter = ", "

// Row is the four-column unit the spreadsheet writer consumes. Order and
// shape must survive rendering verbatim.
type Row struct {
	Section string
	Key     string
	Value   string
	Comment string
}

// Flatten walks a validated document into an ordered row sequence.
// Sections emit in document order; repeated-group records emit in list order
// with a 1-based " #N" suffix on the section label; fields emit in insertion
// order. A field named "comment"/"comments" never gets its own value row: it
// rides in the comment column of the group's previously emitted row (or the
// next one, when the comment leads the group). The output is a plain slice,
// safe to hand across goroutines.
func Flatten(doc *Document) []Row {
	var rows []Row
	for _, sec := range doc.Sections {
		switch sec.Kind {
		case ScalarGroup:
			rows = flattenGroup(rows, sec.Name, sec.Group)
		case RepeatedGroup:
			for i, rec := range sec.Records {
				label := fmt.Sprintf("%s #%d", sec.Name, i+1)
				rows = flattenGroup(rows, label, rec)
			}
		}
	}
	return rows
}

func flattenGroup(rows []Row, label string, g Group) []Row {
	groupStart := len(rows)
	pending := "" // comment seen before the group emitted any row

	for _, f := range g {
		if isCommentKey(f.Key) {
			text := renderValue(f.Value)
			if text == "" {
				continue
			}
			if len(rows) > groupStart {
				last := &rows[len(rows)-1]
				last.Comment = joinComment(last.Comment, text)
			} else {
				pending = joinComment(pending, text)
			}
			continue
		}

		rows = append(rows, Row{
			Section: label,
			Key:     f.Key,
			Value:   renderValue(f.Value),
			Comment: pending,
		})
		pending = ""
	}

	// A group holding nothing but a comment still surfaces it.
	if pending != "" && len(rows) == groupStart {
		rows = append(rows, Row{Section: label, Key: "comments", Comment: pending})
	}
	return rows
}

func isCommentKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	return k == "comment" || k == "comments"
}

func renderValue(v Value) string {
	if v.Kind == KindArray {
		parts := make([]string, 0, len(v.Arr))
		for _, el := range v.Arr {
			parts = append(parts, el.ScalarString())
		}
		return strings.Join(parts, listDelimiter)
	}
	return v.ScalarString()
}

func joinComment(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + "; " + add
}
