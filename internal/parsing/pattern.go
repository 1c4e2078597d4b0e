package parsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// separatorCandidates are the fixed separators Concatenate tries, shortest first so the
// shortest working separator set wins ties (spec §4.1).
var separatorCandidates = []string{" ", "-", "/", ", "}

// DetectPatterns attempts, for every field in outputSchema, to explain it as one of the six
// closed pattern variants against the fields of inputSchema, scored against examples. Patterns
// scoring below threshold are discarded (spec §4.1).
func DetectPatterns(examples []Example, inputSchema, outputSchema *Schema, threshold float64) []Pattern {
	var patterns []Pattern
	for _, out := range outputSchema.Fields {
		if p, ok := bestPattern(examples, inputSchema, out, threshold); ok {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// bestPattern tries each variant in the spec's documented order and returns the first one that
// clears threshold, since the order itself encodes precedence (an exact passthrough should never
// be reported as a same-kind rename, etc).
func bestPattern(examples []Example, inputSchema *Schema, out Field, threshold float64) (Pattern, bool) {
	if p, ok := detectPassthrough(examples, inputSchema, out); ok {
		return p, true
	}
	if p, ok := detectFieldRename(examples, inputSchema, out, threshold); ok && p.Confidence >= threshold {
		return p, true
	}
	if p, ok := detectTypeConvert(examples, inputSchema, out, threshold); ok && p.Confidence >= threshold {
		return p, true
	}
	if p, ok := detectConcatenate(examples, inputSchema, out, threshold); ok && p.Confidence >= threshold {
		return p, true
	}
	if p, ok := detectSubstring(examples, inputSchema, out, threshold); ok && p.Confidence >= threshold {
		return p, true
	}
	if p, ok := detectValueMap(examples, inputSchema, out, threshold); ok && p.Confidence >= threshold {
		return p, true
	}
	return Pattern{}, false
}

func asString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case nil:
		return "", false
	default:
		return toSampleString(v), true
	}
}

func equalValue(a, b interface{}) bool {
	sa, oka := asString(a)
	sb, okb := asString(b)
	if oka != okb {
		return false
	}
	return sa == sb
}

// detectPassthrough: names equal and kinds equal, confidence 1.0.
func detectPassthrough(examples []Example, inputSchema *Schema, out Field) (Pattern, bool) {
	in := inputSchema.FieldByName(out.Name)
	if in == nil || in.Kind != out.Kind {
		return Pattern{}, false
	}
	for _, ex := range examples {
		iv, iok := ex.Input.Get(out.Name)
		ov, ook := ex.Output.Get(out.Name)
		if iok != ook || !equalValue(iv, ov) {
			return Pattern{}, false
		}
	}
	return Pattern{Kind: PatternPassthrough, Confidence: 1.0, Field: out.Name}, true
}

// detectFieldRename: kinds equal, names differ, values pointwise equal across all examples;
// confidence is the fraction of examples where equality holds.
func detectFieldRename(examples []Example, inputSchema *Schema, out Field, threshold float64) (Pattern, bool) {
	var best Pattern
	found := false
	for _, in := range inputSchema.Fields {
		if in.Name == out.Name || in.Kind != out.Kind {
			continue
		}
		matches := 0
		for _, ex := range examples {
			iv, iok := ex.Input.Get(in.Name)
			ov, ook := ex.Output.Get(out.Name)
			if iok && ook && equalValue(iv, ov) {
				matches++
			}
		}
		if len(examples) == 0 {
			continue
		}
		confidence := float64(matches) / float64(len(examples))
		if !found || confidence > best.Confidence {
			best = Pattern{Kind: PatternFieldRename, Confidence: confidence, From: in.Name, To: out.Name}
			found = true
		}
	}
	if !found || best.Confidence < threshold {
		return Pattern{}, false
	}
	return best, true
}

// detectTypeConvert: names match (directly, since rename linkage is reported separately) and
// kinds differ by a one-step lattice widening or a known parser (string->date, string->float).
func detectTypeConvert(examples []Example, inputSchema *Schema, out Field, threshold float64) (Pattern, bool) {
	in := inputSchema.FieldByName(out.Name)
	if in == nil || in.Kind == out.Kind {
		return Pattern{}, false
	}
	if !isKnownConversion(in.Kind, out.Kind) {
		return Pattern{}, false
	}
	matches := 0
	for _, ex := range examples {
		iv, iok := ex.Input.Get(out.Name)
		ov, ook := ex.Output.Get(out.Name)
		if !iok || !ook {
			continue
		}
		if convertKind(iv, out.Kind) == fmt.Sprint(ov) || equalValue(iv, ov) {
			matches++
		}
	}
	if len(examples) == 0 {
		return Pattern{}, false
	}
	confidence := float64(matches) / float64(len(examples))
	if confidence < threshold {
		return Pattern{}, false
	}
	return Pattern{Kind: PatternTypeConvert, Confidence: confidence, Field: out.Name, FromKind: in.Kind, ToKind: out.Kind}, true
}

func isKnownConversion(from, to Kind) bool {
	if widen(from, to) == to || widen(from, to) == from {
		return true
	}
	switch {
	case from == KindString && (to == KindDate || to == KindDatetime || to == KindFloat || to == KindInteger):
		return true
	}
	return false
}

func convertKind(v interface{}, to Kind) string {
	s, _ := asString(v)
	switch to {
	case KindFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	return s
}

// detectConcatenate: for every example the output string equals the concatenation of exactly
// two or three input string fields under a fixed separator from separatorCandidates. Picks the
// shortest separator (by candidate order) and smallest source-field combination that works.
func detectConcatenate(examples []Example, inputSchema *Schema, out Field, threshold float64) (Pattern, bool) {
	if out.Kind != KindString || len(examples) == 0 {
		return Pattern{}, false
	}
	stringFields := []string{}
	for _, f := range inputSchema.Fields {
		if f.Kind == KindString {
			stringFields = append(stringFields, f.Name)
		}
	}
	for size := 2; size <= 3; size++ {
		for _, combo := range combinations(stringFields, size) {
			for _, sep := range separatorCandidates {
				matches := 0
				for _, ex := range examples {
					parts := make([]string, 0, len(combo))
					ok := true
					for _, name := range combo {
						v, present := ex.Input.Get(name)
						if !present {
							ok = false
							break
						}
						s, _ := asString(v)
						parts = append(parts, s)
					}
					if !ok {
						continue
					}
					ov, ook := ex.Output.Get(out.Name)
					os, _ := asString(ov)
					if ook && os == strings.Join(parts, sep) {
						matches++
					}
				}
				confidence := float64(matches) / float64(len(examples))
				if confidence >= threshold {
					return Pattern{
						Kind:       PatternConcatenate,
						Confidence: confidence,
						Sources:    append([]string{}, combo...),
						Separator:  sep,
						Into:       out.Name,
					}, true
				}
			}
		}
	}
	return Pattern{}, false
}

func combinations(items []string, size int) [][]string {
	var out [][]string
	var rec func(start int, cur []string)
	rec = func(start int, cur []string) {
		if len(cur) == size {
			out = append(out, append([]string{}, cur...))
			return
		}
		for i := start; i < len(items); i++ {
			rec(i+1, append(cur, items[i]))
		}
	}
	rec(0, nil)
	return out
}

// detectSubstring: for every example the output equals a deterministic slice, or the first
// regex-match, of one input string field.
func detectSubstring(examples []Example, inputSchema *Schema, out Field, threshold float64) (Pattern, bool) {
	if out.Kind != KindString || len(examples) == 0 {
		return Pattern{}, false
	}
	for _, in := range inputSchema.Fields {
		if in.Kind != KindString {
			continue
		}
		if p, ok := detectFixedSlice(examples, in.Name, out.Name, threshold); ok {
			return p, true
		}
	}
	return Pattern{}, false
}

// detectFixedSlice searches for a single [start,end) byte range of the source field that
// reproduces the output across every example.
func detectFixedSlice(examples []Example, sourceName, outName string, threshold float64) (Pattern, bool) {
	first := true
	start, end := 0, 0
	for _, ex := range examples {
		iv, iok := ex.Input.Get(sourceName)
		ov, ook := ex.Output.Get(outName)
		if !iok || !ook {
			return Pattern{}, false
		}
		is, _ := asString(iv)
		os, _ := asString(ov)
		idx := strings.Index(is, os)
		if idx < 0 || os == "" {
			return Pattern{}, false
		}
		if first {
			start, end = idx, idx+len(os)
			first = false
			continue
		}
		if idx != start || idx+len(os) != end {
			return regexSubstring(examples, sourceName, outName, threshold)
		}
	}
	if first {
		return Pattern{}, false
	}
	return Pattern{
		Kind:       PatternSubstring,
		Confidence: 1.0,
		Source:     sourceName,
		Into:       outName,
		Slice:      [2]int{start, end},
	}, true
}

// regexSubstring falls back to a first-match digits/word-token regex when no fixed byte range
// reproduces the output, since many realistic substrings (e.g. a trailing ID token) are
// positionally variable but pattern-stable.
func regexSubstring(examples []Example, sourceName, outName string, threshold float64) (Pattern, bool) {
	candidates := []string{`\d+`, `[A-Za-z]+`, `\S+$`, `^\S+`}
	for _, re := range candidates {
		compiled, err := regexp.Compile(re)
		if err != nil {
			continue
		}
		matches := 0
		for _, ex := range examples {
			iv, iok := ex.Input.Get(sourceName)
			ov, ook := ex.Output.Get(outName)
			if !iok || !ook {
				continue
			}
			is, _ := asString(iv)
			os, _ := asString(ov)
			if m := compiled.FindString(is); ook && m == os {
				matches++
			}
		}
		if len(examples) == 0 {
			continue
		}
		confidence := float64(matches) / float64(len(examples))
		if confidence >= threshold {
			return Pattern{Kind: PatternSubstring, Confidence: confidence, Source: sourceName, Into: outName, Regex: re}, true
		}
	}
	return Pattern{}, false
}

// detectValueMap: an input field has finite cardinality <= 16 across examples and each distinct
// input value maps one-to-one to a distinct output value.
func detectValueMap(examples []Example, inputSchema *Schema, out Field, threshold float64) (Pattern, bool) {
	if len(examples) == 0 {
		return Pattern{}, false
	}
	for _, in := range inputSchema.Fields {
		mapping := map[string]string{}
		seenOutputs := map[string]string{}
		consistent := true
		matches := 0
		for _, ex := range examples {
			iv, iok := ex.Input.Get(in.Name)
			ov, ook := ex.Output.Get(out.Name)
			if !iok || !ook {
				continue
			}
			is, _ := asString(iv)
			os, _ := asString(ov)
			if existing, ok := mapping[is]; ok {
				if existing != os {
					consistent = false
					break
				}
			} else {
				if owner, ok := seenOutputs[os]; ok && owner != is {
					consistent = false
					break
				}
				mapping[is] = os
				seenOutputs[os] = is
			}
			matches++
		}
		if !consistent || len(mapping) > 16 || len(mapping) == 0 {
			continue
		}
		confidence := float64(matches) / float64(len(examples))
		if confidence >= threshold {
			return Pattern{Kind: PatternValueMap, Confidence: confidence, Field: in.Name, Into: out.Name, Mapping: mapping}, true
		}
	}
	return Pattern{}, false
}
