package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPassthroughExactMatch(t *testing.T) {
	examples := []Example{
		{Input: NewObjectDoc("sku", "A100"), Output: NewObjectDoc("sku", "A100")},
		{Input: NewObjectDoc("sku", "B200"), Output: NewObjectDoc("sku", "B200")},
	}
	inSchema := InferSchema([]ObjectDoc{examples[0].Input, examples[1].Input})
	outSchema := InferSchema([]ObjectDoc{examples[0].Output, examples[1].Output})
	patterns := DetectPatterns(examples, inSchema, outSchema, 0.5)
	require.Len(t, patterns, 1)
	assert.Equal(t, PatternPassthrough, patterns[0].Kind)
	assert.Equal(t, 1.0, patterns[0].Confidence)
}

func TestDetectFieldRenameAcrossAllExamples(t *testing.T) {
	examples := []Example{
		{Input: NewObjectDoc("given_name", "Ada"), Output: NewObjectDoc("first_name", "Ada")},
		{Input: NewObjectDoc("given_name", "Alan"), Output: NewObjectDoc("first_name", "Alan")},
	}
	inSchema := InferSchema([]ObjectDoc{examples[0].Input, examples[1].Input})
	outSchema := InferSchema([]ObjectDoc{examples[0].Output, examples[1].Output})
	patterns := DetectPatterns(examples, inSchema, outSchema, 0.5)
	require.Len(t, patterns, 1)
	assert.Equal(t, PatternFieldRename, patterns[0].Kind)
	assert.Equal(t, "given_name", patterns[0].From)
	assert.Equal(t, "first_name", patterns[0].To)
	assert.Equal(t, 1.0, patterns[0].Confidence)
}

func TestSameKindNumericFieldResolvesAsPassthrough(t *testing.T) {
	examples := []Example{
		{Input: NewObjectDoc("price", "10"), Output: NewObjectDoc("price", "10")},
		{Input: NewObjectDoc("price", "10.5"), Output: NewObjectDoc("price", "10.5")},
	}
	inSchema := InferSchema([]ObjectDoc{examples[0].Input, examples[1].Input})
	outSchema := InferSchema([]ObjectDoc{examples[0].Output, examples[1].Output})
	patterns := DetectPatterns(examples, inSchema, outSchema, 0.5)
	require.Len(t, patterns, 1)
	assert.Equal(t, PatternPassthrough, patterns[0].Kind, "same-shape values should resolve as passthrough before type-convert is considered")
}

func TestDetectConcatenateTwoFields(t *testing.T) {
	examples := []Example{
		{
			Input:  NewObjectDoc("first", "Ada", "last", "Lovelace"),
			Output: NewObjectDoc("full_name", "Ada Lovelace"),
		},
		{
			Input:  NewObjectDoc("first", "Alan", "last", "Turing"),
			Output: NewObjectDoc("full_name", "Alan Turing"),
		},
	}
	inSchema := InferSchema([]ObjectDoc{examples[0].Input, examples[1].Input})
	outSchema := InferSchema([]ObjectDoc{examples[0].Output, examples[1].Output})
	patterns := DetectPatterns(examples, inSchema, outSchema, 0.5)
	require.Len(t, patterns, 1)
	assert.Equal(t, PatternConcatenate, patterns[0].Kind)
	assert.Equal(t, " ", patterns[0].Separator)
	assert.ElementsMatch(t, []string{"first", "last"}, patterns[0].Sources)
}

func TestDetectSubstringFixedSlice(t *testing.T) {
	examples := []Example{
		{Input: NewObjectDoc("email", "ada@example.com"), Output: NewObjectDoc("domain", "example.com")},
		{Input: NewObjectDoc("email", "alan@example.com"), Output: NewObjectDoc("domain", "example.com")},
	}
	inSchema := InferSchema([]ObjectDoc{examples[0].Input, examples[1].Input})
	outSchema := InferSchema([]ObjectDoc{examples[0].Output, examples[1].Output})
	patterns := DetectPatterns(examples, inSchema, outSchema, 0.5)
	require.Len(t, patterns, 1)
	assert.Equal(t, PatternSubstring, patterns[0].Kind)
	assert.Equal(t, "email", patterns[0].Source)
}

func TestDetectValueMapFiniteCardinality(t *testing.T) {
	examples := []Example{
		{Input: NewObjectDoc("status_code", "1"), Output: NewObjectDoc("status", "active")},
		{Input: NewObjectDoc("status_code", "0"), Output: NewObjectDoc("status", "inactive")},
		{Input: NewObjectDoc("status_code", "1"), Output: NewObjectDoc("status", "active")},
	}
	inSchema := InferSchema([]ObjectDoc{examples[0].Input, examples[1].Input, examples[2].Input})
	outSchema := InferSchema([]ObjectDoc{examples[0].Output, examples[1].Output, examples[2].Output})
	patterns := DetectPatterns(examples, inSchema, outSchema, 0.5)
	require.Len(t, patterns, 1)
	assert.Equal(t, PatternValueMap, patterns[0].Kind)
	assert.Equal(t, "active", patterns[0].Mapping["1"])
	assert.Equal(t, "inactive", patterns[0].Mapping["0"])
}

func TestDetectPatternsDiscardsBelowThreshold(t *testing.T) {
	examples := []Example{
		{Input: NewObjectDoc("a", "x"), Output: NewObjectDoc("b", "x")},
		{Input: NewObjectDoc("a", "y"), Output: NewObjectDoc("b", "z")},
	}
	inSchema := InferSchema([]ObjectDoc{examples[0].Input, examples[1].Input})
	outSchema := InferSchema([]ObjectDoc{examples[0].Output, examples[1].Output})
	patterns := DetectPatterns(examples, inSchema, outSchema, 0.9)
	assert.Empty(t, patterns)
}

func TestParseRejectsEmptyExampleSet(t *testing.T) {
	_, err := Parse(nil, 0.5)
	require.Error(t, err)
}

func TestParseRejectsEmptyInputDocument(t *testing.T) {
	_, err := Parse([]Example{{Input: nil, Output: NewObjectDoc("x", "1")}}, 0.5)
	require.Error(t, err)
}

func TestParseReturnsSchemasAndPatterns(t *testing.T) {
	examples := []Example{
		{Input: NewObjectDoc("sku", "A100"), Output: NewObjectDoc("sku", "A100")},
		{Input: NewObjectDoc("sku", "B200"), Output: NewObjectDoc("sku", "B200")},
	}
	parsed, err := Parse(examples, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed.NumExamples)
	assert.NotNil(t, parsed.InputSchema.FieldByName("sku"))
	require.Len(t, parsed.Patterns, 1)
	assert.Equal(t, PatternPassthrough, parsed.Patterns[0].Kind)
}
