package pipelineerrors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipTruncatesAt500(t *testing.T) {
	long := strings.Repeat("x", 600)
	assert.Len(t, Clip(long), 500)
	assert.Len(t, Clip("short"), 5)
}

func TestEveryVariantSatisfiesPipelineError(t *testing.T) {
	var variants = []PipelineError{
		&ExampleParsingError{Reason: "bad"},
		&PlanGenerationError{Reason: "missing field strategy_prose"},
		&CodeParsingError{Reason: "fewer than three blocks"},
		&LLMTransportError{Category: TransportRateLimit, Attempts: 3},
		&CodeValidationError{Attempts: 3, Violations: []ViolationSummary{{Code: "MISSING_INTERFACE"}}},
		&FileWriteError{Path: "/tmp/x", Reason: WriteReasonNoSpace},
		&ProjectNotFoundError{Name: "demo"},
		&Cancelled{Reason: CancelDeadline},
	}
	for _, v := range variants {
		assert.NotEmpty(t, v.Code())
		assert.NotEmpty(t, v.Error())
		assert.NotEmpty(t, v.RemediationHint())
	}
}

func TestLLMTransportErrorAuthHintDiffersFromRateLimit(t *testing.T) {
	auth := &LLMTransportError{Category: TransportAuth}
	rateLimit := &LLMTransportError{Category: TransportRateLimit}
	assert.NotEqual(t, auth.RemediationHint(), rateLimit.RemediationHint())
}

func TestErrorsAsUnwrapsConcreteVariant(t *testing.T) {
	var err error = &FileWriteError{Path: "/tmp/x", Reason: WriteReasonInUse}
	var target *FileWriteError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, WriteReasonInUse, target.Reason)
}
