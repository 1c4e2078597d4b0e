package refine

import (
	"time"

	"github.com/google/uuid"

	"extractforge/internal/codewriter"
	"extractforge/internal/constraints"
	"extractforge/internal/pipelineerrors"
	"extractforge/internal/render"
)

// AttemptRecord captures one planning+coding+validation cycle for GenerationContext's retry
// history (spec §7's "full retry history" requirement).
type AttemptRecord struct {
	Attempt    int
	Violations []pipelineerrors.ViolationSummary
}

// GenerationContext is the accumulating record of one pipeline run (spec §3), owned exclusively
// by the controller for the run's duration and returned to the caller on success or failure.
type GenerationContext struct {
	RunID           string
	ProjectName     string
	Attempt         int
	StartTime       time.Time
	DurationSeconds float64

	Plan             *render.Plan
	GeneratedCode    *codewriter.GeneratedCode
	ValidationResult *constraints.ValidationResult

	Errors []error
	// AttemptHistory records every attempt's violations, in order, for §7's retry-history
	// requirement.
	AttemptHistory []AttemptRecord

	WrittenPaths *codewriter.WriteResult
	Completed    bool
}

// newGenerationContext creates a fresh context with a run ID assigned for log correlation
// (spec §10).
func newGenerationContext(projectName string, startTime time.Time) *GenerationContext {
	return &GenerationContext{
		RunID:       uuid.NewString(),
		ProjectName: projectName,
		StartTime:   startTime,
		Attempt:     1,
	}
}

func (c *GenerationContext) fail(err error) *GenerationContext {
	c.Errors = append(c.Errors, err)
	c.Completed = false
	c.DurationSeconds = time.Since(c.StartTime).Seconds()
	return c
}

func (c *GenerationContext) succeed() *GenerationContext {
	c.Completed = true
	c.DurationSeconds = time.Since(c.StartTime).Seconds()
	return c
}
