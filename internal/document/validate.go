package document

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// StructuralViolationError reports where parsed model output breaks the
// two-shape contract, e.g. "Education Details[1].degree".
type StructuralViolationError struct {
	Path   string
	Detail string
}

func (e *StructuralViolationError) Error() string {
	return fmt.Sprintf("structural violation at %s: %s", e.Path, e.Detail)
}

// contractSchema mirrors the structural contract as a JSON Schema: the top
// level is an object; every section body is either a flat object of scalars
// (or scalar lists), or an array of such objects. Key names are deliberately
// unconstrained: the model decides the shape per document.
const contractSchema = `{
  "type": "object",
  "additionalProperties": {
    "oneOf": [
      {"$ref": "#/$defs/group"},
      {"type": "array", "items": {"$ref": "#/$defs/group"}}
    ]
  },
  "$defs": {
    "scalar": {"type": ["string", "number", "integer", "boolean", "null"]},
    "group": {
      "type": "object",
      "additionalProperties": {
        "oneOf": [
          {"$ref": "#/$defs/scalar"},
          {"type": "array", "items": {"$ref": "#/$defs/scalar"}}
        ]
      }
    }
  }
}`

var compiledContract = jsonschema.MustCompileString("contract.json", contractSchema)

// SectionKind discriminates the two permitted section shapes.
type SectionKind int

const (
	ScalarGroup   SectionKind = iota // flat field map
	RepeatedGroup                    // ordered list of flat field maps
)

// Field is one named value inside a group. Value is a scalar or a flat list
// of scalars, as guaranteed by validation.
type Field struct {
	Key   string
	Value Value
}

// Group is an ordered set of fields, one record's worth.
type Group []Field

// Section is one top-level entry of the extracted document.
type Section struct {
	Name    string
	Kind    SectionKind
	Group   Group   // set when Kind == ScalarGroup
	Records []Group // set when Kind == RepeatedGroup
}

// Document is the validated, ordered extraction result. It is created fresh
// per request and owns no state beyond its own slices.
type Document struct {
	Sections []Section
}

// Validate enforces the structural contract on parsed model output and builds
// the ordered Document. The schema gate runs first; the ordered walk then
// produces the Document and path-qualified violations.
func Validate(v Value) (*Document, error) {
	if err := compiledContract.Validate(v.ToAny()); err != nil {
		// The walk names the offending path more readably than a JSON pointer.
		if _, werr := walk(v); werr != nil {
			return nil, werr
		}
		// Walk and schema disagree: surface the schema's view.
		return nil, &StructuralViolationError{Path: "$", Detail: err.Error()}
	}
	return walk(v)
}

func walk(v Value) (*Document, error) {
	if v.Kind != KindObject {
		return nil, &StructuralViolationError{Path: "$", Detail: "top-level value must be an object"}
	}

	doc := &Document{Sections: make([]Section, 0, len(v.Members))}
	for _, m := range v.Members {
		sec, err := walkSection(m.Key, m.Value)
		if err != nil {
			return nil, err
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc, nil
}

func walkSection(name string, body Value) (Section, error) {
	switch body.Kind {
	case KindObject:
		g, err := walkGroup(name, body)
		if err != nil {
			return Section{}, err
		}
		return Section{Name: name, Kind: ScalarGroup, Group: g}, nil

	case KindArray:
		records := make([]Group, 0, len(body.Arr))
		for i, el := range body.Arr {
			if el.Kind != KindObject {
				return Section{}, &StructuralViolationError{
					Path:   fmt.Sprintf("%s[%d]", name, i),
					Detail: "repeated group element must be an object of scalar fields",
				}
			}
			g, err := walkGroup(fmt.Sprintf("%s[%d]", name, i), el)
			if err != nil {
				return Section{}, err
			}
			records = append(records, g)
		}
		return Section{Name: name, Kind: RepeatedGroup, Records: records}, nil

	default:
		return Section{}, &StructuralViolationError{
			Path:   name,
			Detail: "section body must be an object or an array of objects",
		}
	}
}

func walkGroup(path string, obj Value) (Group, error) {
	g := make(Group, 0, len(obj.Members))
	for _, m := range obj.Members {
		fieldPath := path + "." + m.Key
		switch {
		case m.Value.IsScalar():
			// ok
		case m.Value.Kind == KindArray:
			for i, el := range m.Value.Arr {
				if !el.IsScalar() {
					return nil, &StructuralViolationError{
						Path:   fmt.Sprintf("%s[%d]", fieldPath, i),
						Detail: "list field values must be primitives",
					}
				}
			}
		default:
			return nil, &StructuralViolationError{
				Path:   fieldPath,
				Detail: "field value must be a primitive or a list of primitives",
			}
		}
		g = append(g, Field{Key: m.Key, Value: m.Value})
	}
	return g, nil
}

// AsValue reconstructs the ordered JSON tree from a validated document, so a
// document can be re-checked against the same contract (validation is
// idempotent) or re-serialized losslessly.
func (d *Document) AsValue() Value {
	root := Value{Kind: KindObject, Members: make([]Member, 0, len(d.Sections))}
	for _, sec := range d.Sections {
		var body Value
		switch sec.Kind {
		case ScalarGroup:
			body = groupValue(sec.Group)
		case RepeatedGroup:
			body = Value{Kind: KindArray, Arr: make([]Value, 0, len(sec.Records))}
			for _, rec := range sec.Records {
				body.Arr = append(body.Arr, groupValue(rec))
			}
		}
		root.Members = append(root.Members, Member{Key: sec.Name, Value: body})
	}
	return root
}

func groupValue(g Group) Value {
	v := Value{Kind: KindObject, Members: make([]Member, 0, len(g))}
	for _, f := range g {
		v.Members = append(v.Members, Member{Key: f.Key, Value: f.Value})
	}
	return v
}

// String renders a compact shape summary for logs ("3 sections, 17 fields").
func (d *Document) String() string {
	fields := 0
	for _, s := range d.Sections {
		switch s.Kind {
		case ScalarGroup:
			fields += len(s.Group)
		case RepeatedGroup:
			for _, r := range s.Records {
				fields += len(r)
			}
		}
	}
	return fmt.Sprintf("%d sections, %d fields", len(d.Sections), fields)
}
