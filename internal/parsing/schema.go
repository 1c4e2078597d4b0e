package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDatetimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`)
	integerRe     = regexp.MustCompile(`^-?\d+$`)
	floatRe       = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// inferLeafKind classifies one leaf value per spec §4.1: a typed Go scalar is classified
// directly; a string leaf is classified by the documented heuristics (digit-string, fractional,
// boolean literal, ISO-8601, else string) since example documents commonly arrive with
// string-typed scalars (e.g. CSV-sourced example pairs).
func inferLeafKind(v interface{}) Kind {
	switch val := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case float64:
		if val == float64(int64(val)) {
			return KindInteger
		}
		return KindFloat
	case int, int64:
		return KindInteger
	case string:
		return inferStringKind(val)
	default:
		return KindString
	}
}

func inferStringKind(s string) Kind {
	if s == "" {
		return KindNull
	}
	lower := strings.ToLower(s)
	switch lower {
	case "true", "false", "yes", "no":
		return KindBoolean
	}
	if isoDatetimeRe.MatchString(s) {
		return KindDatetime
	}
	if isoDateRe.MatchString(s) {
		return KindDate
	}
	if integerRe.MatchString(s) {
		return KindInteger
	}
	if floatRe.MatchString(s) {
		return KindFloat
	}
	return KindString
}

// widen applies the fixed kind lattice (spec §4.1): null < boolean < integer < float < string;
// date/datetime collapse to string on any disagreement (including with each other).
func widen(a, b Kind) Kind {
	if a == b {
		return a
	}
	if a == KindNull {
		return b
	}
	if b == KindNull {
		return a
	}
	if isDateLike(a) || isDateLike(b) {
		return KindString
	}
	if isShaped(a) || isShaped(b) {
		return KindString
	}
	ra, oka := kindRank[a]
	rb, okb := kindRank[b]
	if !oka || !okb {
		return KindString
	}
	if ra > rb {
		return a
	}
	return b
}

func isDateLike(k Kind) bool { return k == KindDate || k == KindDatetime }
func isShaped(k Kind) bool   { return k == KindArray || k == KindObject }

// InferSchema builds the per-example schema by structural walk, then merges all per-example
// schemas into the pointwise least upper bound (spec §4.1 invariant). The first document seeds
// the accumulator directly rather than merging against an empty schema, so a field present only
// in the first example isn't spuriously marked nullable before a second example has been seen.
func InferSchema(docs []ObjectDoc) *Schema {
	var merged *Schema
	for i, doc := range docs {
		per := inferObjectSchema(doc)
		if i == 0 {
			merged = per
			continue
		}
		merged = mergeSchema(merged, per)
	}
	if merged == nil {
		return &Schema{}
	}
	return merged
}

func inferObjectSchema(doc ObjectDoc) *Schema {
	s := &Schema{}
	for _, e := range doc {
		s.Fields = append(s.Fields, inferFieldFromValue(e.Name, e.Value))
	}
	return s
}

func inferFieldFromValue(name string, v interface{}) Field {
	f := Field{Name: name}
	switch val := v.(type) {
	case nil:
		f.Kind = KindNull
		f.Nullable = true
	case []interface{}:
		f.Kind = KindArray
		var elemDocs []ObjectDoc
		for _, item := range val {
			if m, ok := item.(ObjectDoc); ok {
				elemDocs = append(elemDocs, m)
			}
		}
		if len(elemDocs) > 0 {
			f.ElementSchema = InferSchema(elemDocs)
		}
	case ObjectDoc:
		f.Kind = KindObject
		f.ObjectSchema = inferObjectSchema(val)
	default:
		f.Kind = inferLeafKind(v)
		f.SampleValues = []string{toSampleString(v)}
	}
	return f
}

func toSampleString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// mergeSchema merges two per-example (or already-accumulated) schemas into their pointwise LUB:
// keys are unioned, field order follows first appearance across a then b, a key missing from
// either side becomes nullable, and kinds widen per the fixed lattice. Nullable is monotone: once
// a field has been observed missing from any example, it stays nullable through later merges.
func mergeSchema(a, b *Schema) *Schema {
	out := &Schema{}
	bIndex := map[string]int{}
	for i, f := range b.Fields {
		bIndex[f.Name] = i
	}

	seen := map[string]bool{}
	for _, fa := range a.Fields {
		if i, ok := bIndex[fa.Name]; ok {
			out.Fields = append(out.Fields, mergeFields(fa, b.Fields[i]))
		} else {
			fa.Nullable = true
			out.Fields = append(out.Fields, fa)
		}
		seen[fa.Name] = true
	}
	for _, fb := range b.Fields {
		if seen[fb.Name] {
			continue
		}
		fb.Nullable = true
		out.Fields = append(out.Fields, fb)
	}
	return out
}

// mergeFields combines two observations of the same field name: kinds widen per the fixed
// lattice, sample values from both sides accumulate, and nested schemas merge recursively.
func mergeFields(a, b Field) Field {
	merged := a
	merged.Kind = widen(a.Kind, b.Kind)
	merged.Nullable = a.Nullable || b.Nullable
	merged.SampleValues = append(append([]string{}, a.SampleValues...), b.SampleValues...)

	switch {
	case a.ElementSchema == nil:
		merged.ElementSchema = b.ElementSchema
	case b.ElementSchema != nil:
		merged.ElementSchema = mergeSchema(a.ElementSchema, b.ElementSchema)
	}
	switch {
	case a.ObjectSchema == nil:
		merged.ObjectSchema = b.ObjectSchema
	case b.ObjectSchema != nil:
		merged.ObjectSchema = mergeSchema(a.ObjectSchema, b.ObjectSchema)
	}
	return merged
}
