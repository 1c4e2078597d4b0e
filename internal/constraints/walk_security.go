package constraints

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"extractforge/internal/config"
)

// securityWalker enforces that generated code never calls a configured dangerous callable and
// never assigns a literal matching a configured credential pattern (spec §4.4 walker 6).
type securityWalker struct{}

func (securityWalker) RuleID() RuleID { return RuleSecurity }

func (w securityWalker) Check(mod *Module, policy config.ConstraintConfig) []Violation {
	var violations []Violation
	credentialRes := compileAll(policy.CredentialPatterns)

	checkBody := func(fnName, body string, startLine int) {
		for _, dangerous := range policy.DangerousCallables {
			if callRe := callPattern(dangerous); callRe.MatchString(body) {
				violations = append(violations, Violation{
					RuleID:   RuleSecurity,
					Code:     "DANGEROUS_FUNCTION",
					Location: location(Function{Name: fnName, StartLine: startLine}, dangerous),
					Message:  fmt.Sprintf("%s: calls forbidden callable %q", fnName, dangerous),
					Severity: SeverityBlocking,
				})
			}
		}
		for i, line := range strings.Split(body, "\n") {
			for _, re := range credentialRes {
				if re.MatchString(line) {
					violations = append(violations, Violation{
						RuleID:   RuleSecurity,
						Code:     "HARDCODED_CREDENTIAL",
						Location: fmt.Sprintf("%s:%d", fnName, startLine+i),
						Message:  fmt.Sprintf("%s: line matches a credential pattern", fnName),
						Severity: SeverityBlocking,
					})
				}
			}
		}
	}

	if !policy.AllowPrintStatements {
		printRe := regexp.MustCompile(`(?m)(^|\W)print\s*\(`)
		for _, fn := range mod.AllFunctions() {
			if printRe.MatchString(fn.Body) {
				violations = append(violations, Violation{
					RuleID:   RuleSecurity,
					Code:     "PRINT_STATEMENT",
					Location: strconv.Itoa(fn.StartLine),
					Message:  fmt.Sprintf("%s: uses print() instead of the logging module", fn.Name),
					Severity: SeverityWarning,
				})
			}
		}
	}

	for _, fn := range mod.AllFunctions() {
		checkBody(fn.Name, fn.Body, fn.StartLine)
	}
	return violations
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			out = append(out, re)
		}
	}
	return out
}

// callPattern builds a word-boundary regex matching `name(` so e.g. "eval" doesn't also match
// "evaluate(".
func callPattern(name string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(name)
	return regexp.MustCompile(`(^|[^.\w])` + escaped + `\s*\(`)
}
