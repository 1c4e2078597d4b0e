package render

import (
	"strconv"
	"strings"

	"extractforge/internal/config"
	"extractforge/internal/parsing"
	"extractforge/internal/pipelineerrors"
)

// FieldMapping is one entry of a Plan's field_mappings array.
type FieldMapping struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Transform string `json:"transform,omitempty"`
}

// Plan is the planner phase's parsed output (spec §4.3).
type Plan struct {
	StrategyProse string         `json:"strategy_prose"`
	FieldMappings []FieldMapping `json:"field_mappings"`
	EdgeCases     []string       `json:"edge_cases,omitempty"`
}

// planView and codeView are the flattened shapes handed to text/template; struct field promotion
// keeps the templates free of helper-function calls for anything beyond formatting.
type planView struct {
	ProjectName         string
	ProjectDescription  string
	InputSchema         *parsing.Schema
	OutputSchema        *parsing.Schema
	Patterns            []parsing.Pattern
	Examples            []parsing.Example
	NumExamples         int
	PriorViolations     []pipelineerrors.ViolationSummary
}

type codeView struct {
	ProjectName string
	Plan        Plan
	config.ConstraintConfig
	PriorViolations []pipelineerrors.ViolationSummary
}

// maxInlineExamples bounds how many examples are rendered verbatim into the plan prompt, keeping
// prompts bounded when an example set is large.
const maxInlineExamples = 3

// RenderPlanPrompt renders the planner-phase prompt. priorViolations is nil on a first attempt
// and non-nil on a refinement retry (spec §4.5's refinement edge).
func RenderPlanPrompt(projectName, projectDescription string, parsed *parsing.ParsedExamples, priorViolations []pipelineerrors.ViolationSummary) (string, error) {
	examples := parsed.Examples
	if len(examples) > maxInlineExamples {
		examples = examples[:maxInlineExamples]
	}
	view := planView{
		ProjectName:         projectName,
		ProjectDescription:  projectDescription,
		InputSchema:         parsed.InputSchema,
		OutputSchema:        parsed.OutputSchema,
		Patterns:            parsed.Patterns,
		Examples:            examples,
		NumExamples:         parsed.NumExamples,
		PriorViolations:     priorViolations,
	}
	var sb strings.Builder
	if err := planTemplate.Execute(&sb, view); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderCodePrompt renders the coder-phase prompt from an accepted Plan and the active
// constraint policy.
func RenderCodePrompt(projectName string, plan Plan, constraints config.ConstraintConfig, priorViolations []pipelineerrors.ViolationSummary) (string, error) {
	view := codeView{
		ProjectName:      projectName,
		Plan:             plan,
		ConstraintConfig: constraints,
		PriorViolations:  priorViolations,
	}
	var sb strings.Builder
	if err := codeTemplate.Execute(&sb, view); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatViolationsForFeedback renders violations as a bulleted list for inclusion outside the
// templates (e.g. CLI progress output), mirroring the templates' own violation rendering.
func FormatViolationsForFeedback(violations []pipelineerrors.ViolationSummary) string {
	if len(violations) == 0 {
		return "No violations detected."
	}
	var sb strings.Builder
	sb.WriteString("Constraint violations detected:\n\n")
	for i, v := range violations {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(". [")
		sb.WriteString(v.Code)
		sb.WriteString("] ")
		sb.WriteString(v.Message)
		if v.RuleID != "" {
			sb.WriteString(" (rule ")
			sb.WriteString(v.RuleID)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
