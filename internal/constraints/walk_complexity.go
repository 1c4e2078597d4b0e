package constraints

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"extractforge/internal/config"
)

// complexityWalker enforces per-function cyclomatic complexity and per-function/per-file line
// count ceilings (spec §4.4 walker 5). Complexity is approximated by counting decision-point
// keywords in the function body, the same regex-driven scoring idiom
// internal/autopoiesis/complexity.go uses for task-complexity classification, applied here to
// Python source instead of natural-language requests.
type complexityWalker struct{}

func (complexityWalker) RuleID() RuleID { return RuleComplexity }

// decisionPointPatterns are the Python constructs that add one to cyclomatic complexity: each
// independent branch or short-circuit boolean operator.
var decisionPointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*if\b`),
	regexp.MustCompile(`(?m)^\s*elif\b`),
	regexp.MustCompile(`(?m)^\s*for\b`),
	regexp.MustCompile(`(?m)^\s*while\b`),
	regexp.MustCompile(`(?m)^\s*except\b`),
	regexp.MustCompile(`\bor\b`),
	regexp.MustCompile(`\band\b`),
	regexp.MustCompile(`\bif\s+.+\belse\b`), // ternary
}

func cyclomaticComplexity(body string) int {
	complexity := 1
	for _, re := range decisionPointPatterns {
		complexity += len(re.FindAllStringIndex(body, -1))
	}
	return complexity
}

func lineCount(body string) int {
	if body == "" {
		return 0
	}
	return strings.Count(body, "\n") + 1
}

func (complexityWalker) Check(mod *Module, policy config.ConstraintConfig) []Violation {
	var violations []Violation
	for _, fn := range mod.AllFunctions() {
		if policy.MaxCyclomaticComplexity > 0 {
			if score := cyclomaticComplexity(fn.Body); score > policy.MaxCyclomaticComplexity {
				violations = append(violations, Violation{
					RuleID:   RuleComplexity,
					Code:     "HIGH_COMPLEXITY",
					Location: strconv.Itoa(fn.StartLine),
					Message: fmt.Sprintf("%s: cyclomatic complexity %d exceeds limit %d",
						fn.Name, score, policy.MaxCyclomaticComplexity),
					Severity: SeverityWarning,
				})
			}
		}
		if policy.MaxMethodLines > 0 {
			if n := lineCount(fn.Body); n > policy.MaxMethodLines {
				violations = append(violations, Violation{
					RuleID:   RuleComplexity,
					Code:     "FUNCTION_TOO_LONG",
					Location: strconv.Itoa(fn.StartLine),
					Message: fmt.Sprintf("%s: %d lines exceeds limit %d",
						fn.Name, n, policy.MaxMethodLines),
					Severity: SeverityWarning,
				})
			}
		}
	}
	if policy.MaxFileLines > 0 && mod.LineCount > policy.MaxFileLines {
		violations = append(violations, Violation{
			RuleID:   RuleComplexity,
			Code:     "FILE_TOO_LONG",
			Location: "1",
			Message:  fmt.Sprintf("module has %d lines, exceeds limit %d", mod.LineCount, policy.MaxFileLines),
			Severity: SeverityWarning,
		})
	}
	return violations
}
