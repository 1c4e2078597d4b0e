// Package parsing implements C1 (Example Parser): schema inference over example input/output
// pairs and detection of the six closed pattern variants that describe how an output field is
// derived from input fields.
package parsing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the closed set a Field's inferred type is drawn from (spec §3).
type Kind string

const (
	KindNull     Kind = "null"
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindBoolean  Kind = "boolean"
	KindDate     Kind = "date"
	KindDatetime Kind = "datetime"
	KindArray    Kind = "array"
	KindObject   Kind = "object"
)

// kindRank orders the scalar widening lattice: null < boolean < integer < float < string.
var kindRank = map[Kind]int{
	KindNull:    0,
	KindBoolean: 1,
	KindInteger: 2,
	KindFloat:   3,
	KindString:  4,
}

// Field describes one inferred schema member.
type Field struct {
	Name          string
	Kind          Kind
	Nullable      bool
	SampleValues  []string
	ElementSchema *Schema // populated when Kind == KindArray
	ObjectSchema  *Schema // populated when Kind == KindObject
}

// Schema is an ordered list of Fields; order follows first-appearance order across examples.
type Schema struct {
	Fields []Field
}

// FieldByName returns the field with the given name, or nil.
func (s *Schema) FieldByName(name string) *Field {
	if s == nil {
		return nil
	}
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// Entry is one key/value pair of an ObjectDoc, in declaration order.
type Entry struct {
	Name  string
	Value interface{}
}

// ObjectDoc is an ordered string-keyed mapping — the structured-document mapping variant from
// spec §3. A plain Go map cannot represent "first-appearance order" (spec §4.1's schema-order
// invariant), so documents use this ordered form instead of map[string]interface{}.
type ObjectDoc []Entry

// Get returns the value for name and whether it was present.
func (o ObjectDoc) Get(name string) (interface{}, bool) {
	for _, e := range o {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Names returns the entries' keys in declaration order.
func (o ObjectDoc) Names() []string {
	names := make([]string, len(o))
	for i, e := range o {
		names[i] = e.Name
	}
	return names
}

// String renders the document as a compact {name: value, ...} form for prompt inclusion and
// debug output.
func (o ObjectDoc) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Name)
		b.WriteString(": ")
		fmt.Fprintf(&b, "%v", e.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// NewObjectDoc builds an ObjectDoc from alternating name/value pairs, a convenience for tests
// and call sites constructing literal documents.
func NewObjectDoc(pairs ...interface{}) ObjectDoc {
	var doc ObjectDoc
	for i := 0; i+1 < len(pairs); i += 2 {
		doc = append(doc, Entry{Name: pairs[i].(string), Value: pairs[i+1]})
	}
	return doc
}

// UnmarshalJSON decodes a JSON object preserving key order via token-based decoding —
// unmarshalling into map[string]interface{} first would lose the first-appearance order this
// package's schema-order invariant depends on. No ordered-JSON-object library appears anywhere
// in the pack for this concern, so this narrow stdlib json.Decoder walk is the justified choice.
func (o *ObjectDoc) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("parsing: expected a JSON object, got %v", tok)
	}
	var doc ObjectDoc
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("parsing: expected a string object key, got %v", keyTok)
		}
		value, err := decodeOrderedValue(dec)
		if err != nil {
			return err
		}
		doc = append(doc, Entry{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return err
	}
	*o = doc
	return nil
}

// decodeOrderedValue decodes one JSON value from dec, recursing into nested objects as
// ObjectDoc (to preserve their order too) and arrays as []interface{}.
func decodeOrderedValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			var nested ObjectDoc
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key := keyTok.(string)
				val, err := decodeOrderedValue(dec)
				if err != nil {
					return nil, err
				}
				nested = append(nested, Entry{Name: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return nested, nil
		case '[':
			var arr []interface{}
			for dec.More() {
				val, err := decodeOrderedValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return arr, nil
		}
	}
	return tok, nil
}

// MarshalJSON encodes the document back to a JSON object, preserving field order.
func (o ObjectDoc) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		keyBytes, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		b.Write(keyBytes)
		b.WriteByte(':')
		valBytes, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		b.Write(valBytes)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Example is an immutable {input, output} pair.
type Example struct {
	Input  ObjectDoc `json:"input"`
	Output ObjectDoc `json:"output"`
}

// PatternKind is the closed set of transformation variants (spec §3).
type PatternKind string

const (
	PatternFieldRename PatternKind = "field_rename"
	PatternTypeConvert PatternKind = "type_convert"
	PatternConcatenate PatternKind = "concatenate"
	PatternSubstring   PatternKind = "substring"
	PatternValueMap    PatternKind = "value_map"
	PatternPassthrough PatternKind = "passthrough"
)

// Pattern is a tagged record describing one inferred transformation. Exactly one of the
// kind-specific fields is meaningful, selected by Kind.
type Pattern struct {
	Kind       PatternKind
	Confidence float64

	// FieldRename
	From, To string

	// TypeConvert
	Field    string
	FromKind Kind
	ToKind   Kind

	// Concatenate
	Sources   []string
	Separator string
	Into      string

	// Substring
	Source string
	Regex  string
	Slice  [2]int
	// Into reused from Concatenate for Substring's target field.

	// ValueMap
	Mapping map[string]string
	// Field and Into carry the source/target field names for ValueMap.

	// Passthrough reuses Field for the shared field name.
}

// ParsedExamples is C1's immutable output.
type ParsedExamples struct {
	Examples     []Example
	InputSchema  *Schema
	OutputSchema *Schema
	Patterns     []Pattern
	NumExamples  int
}
