package parsing

import (
	"strconv"

	"extractforge/internal/pipelineerrors"
)

// defaultConfidenceThreshold is used when callers don't supply a policy override; it mirrors
// ProjectConfig.Generation.PatternConfidenceThreshold's default (spec §9 resolved open question).
const defaultConfidenceThreshold = 0.5

// Parse is C1's entry point: it validates the example set, infers the input and output schemas
// by pointwise LUB merge, and detects the closed pattern variants explaining each output field.
// threshold is the minimum pattern confidence to keep (ProjectConfig.Generation's policy value);
// pass 0 to use the default.
func Parse(examples []Example, threshold float64) (*ParsedExamples, error) {
	if len(examples) == 0 {
		return nil, &pipelineerrors.ExampleParsingError{Reason: "at least one example is required"}
	}
	for i, ex := range examples {
		if len(ex.Input) == 0 {
			return nil, &pipelineerrors.ExampleParsingError{Reason: "example has an empty input document", Path: indexPath(i)}
		}
		if len(ex.Output) == 0 {
			return nil, &pipelineerrors.ExampleParsingError{Reason: "example has an empty output document", Path: indexPath(i)}
		}
	}
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}

	inputDocs := make([]ObjectDoc, len(examples))
	outputDocs := make([]ObjectDoc, len(examples))
	for i, ex := range examples {
		inputDocs[i] = ex.Input
		outputDocs[i] = ex.Output
	}

	inputSchema := InferSchema(inputDocs)
	outputSchema := InferSchema(outputDocs)
	patterns := DetectPatterns(examples, inputSchema, outputSchema, threshold)

	return &ParsedExamples{
		Examples:     examples,
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
		Patterns:     patterns,
		NumExamples:  len(examples),
	}, nil
}

func indexPath(i int) string {
	return "example[" + strconv.Itoa(i) + "]"
}
