// Package document implements the response-side core of the extraction
// pipeline: locating the JSON payload in raw model output, enforcing the
// structural contract, and flattening the result into spreadsheet rows.
//
// The model chooses section and field names at runtime, so the document shape
// is a tagged union (scalar group | repeated group) over an order-preserving
// JSON tree rather than a fixed record type. encoding/json maps lose key
// order, which the flattener must keep, hence the custom Value type decoded
// token-by-token.
package document

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the JSON value variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key/value pair of an object, in source order.
type Member struct {
	Key   string
	Value Value
}

// Value is an order-preserving JSON tree. Numbers keep their source literal
// (json.Number) so flattened output never reformats what the model wrote.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Str     string
	Arr     []Value
	Members []Member
}

// IsScalar reports whether v is a primitive the structural contract accepts
// as a field value (null is tolerated and renders empty).
func (v Value) IsScalar() bool {
	switch v.Kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// ScalarString renders a primitive for the value column.
func (v Value) ScalarString() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return v.Number.String()
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// ToAny converts the ordered tree into plain decoded-JSON Go values
// (map/slice/json.Number) for libraries that expect them, like the
// JSON-schema validator. Object key order is lost, which is fine there.
func (v Value) ToAny() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	case KindArray:
		out := make([]any, len(v.Arr))
		for i, el := range v.Arr {
			out[i] = el.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Members))
		for _, m := range v.Members {
			out[m.Key] = m.Value.ToAny()
		}
		return out
	default:
		return nil
	}
}

// decodeValue consumes exactly one JSON value from dec.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{Kind: KindNull}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return Value{Kind: KindNumber, Number: t}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	v := Value{Kind: KindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		v.Members = append(v.Members, Member{Key: key, Value: val})
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	v := Value{Kind: KindArray, Arr: []Value{}}
	for dec.More() {
		el, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		v.Arr = append(v.Arr, el)
	}
	// consume closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}
