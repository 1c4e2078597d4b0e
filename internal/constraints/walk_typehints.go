package constraints

import (
	"fmt"
	"strconv"

	"extractforge/internal/config"
)

// typeHintWalker enforces that every public function/method carries a complete type hint on
// every parameter (excluding self/cls and *args/**kwargs splats) and its return type (spec §4.4
// walker 3), when ConstraintConfig.RequireTypeHints is set.
type typeHintWalker struct{}

func (typeHintWalker) RuleID() RuleID { return RuleTypeHint }

func (typeHintWalker) Check(mod *Module, policy config.ConstraintConfig) []Violation {
	if !policy.RequireTypeHints {
		return nil
	}
	var violations []Violation
	for _, fn := range mod.AllFunctions() {
		if isPrivateName(fn.Name) {
			continue
		}
		for _, p := range fn.Params {
			if p.IsStar || p.Name == "self" || p.Name == "cls" {
				continue
			}
			if !p.HasHint {
				violations = append(violations, Violation{
					RuleID:   RuleTypeHint,
					Code:     "MISSING_TYPE_HINT",
					Location: location(fn, p.Name),
					Message:  fmt.Sprintf("%s: parameter %q has no type hint", fn.Name, p.Name),
					Severity: SeverityWarning,
				})
			}
		}
		if !fn.HasReturnHint {
			violations = append(violations, Violation{
				RuleID:   RuleTypeHint,
				Code:     "MISSING_RETURN_TYPE",
				Location: strconv.Itoa(fn.StartLine),
				Message:  fmt.Sprintf("%s: missing return type hint", fn.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return violations
}

func isPrivateName(name string) bool {
	if len(name) == 0 {
		return false
	}
	return name[0] == '_'
}

func location(fn Function, detail string) string {
	return fmt.Sprintf("%s:%d:%s", fn.Name, fn.StartLine, detail)
}
