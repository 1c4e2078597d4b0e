package constraints

import (
	"fmt"
	"strconv"

	"extractforge/internal/config"
)

// dependencyInjectionWalker enforces spec §4.4 walker 2: every class marked with the configured
// DI decorator (class-level or on its __init__, default name "inject") must take its
// collaborators as type-annotated constructor parameters with no bare mutable default values, and
// the module as a whole must carry no mutable state at top level.
type dependencyInjectionWalker struct{}

func (dependencyInjectionWalker) RuleID() RuleID { return RuleDependencyInjection }

func (dependencyInjectionWalker) Check(mod *Module, policy config.ConstraintConfig) []Violation {
	var violations []Violation

	for _, cls := range mod.Classes {
		init := findMethod(cls, "__init__")
		marked := hasDecorator(cls.Decorators, policy.DIDecorator) ||
			(init != nil && hasDecorator(init.Decorators, policy.DIDecorator))
		if !marked {
			continue
		}
		if init == nil {
			violations = append(violations, Violation{
				RuleID:   RuleDependencyInjection,
				Code:     "MISSING_DECORATOR",
				Location: strconv.Itoa(cls.StartLine),
				Message:  fmt.Sprintf("class %s is marked @%s but has no __init__ to receive injected collaborators", cls.Name, policy.DIDecorator),
				Severity: SeverityBlocking,
			})
			continue
		}
		for _, p := range init.Params {
			if p.Name == "self" || p.IsStar {
				continue
			}
			if !p.HasHint {
				violations = append(violations, Violation{
					RuleID:   RuleDependencyInjection,
					Code:     "MISSING_DECORATOR",
					Location: strconv.Itoa(init.StartLine),
					Message:  fmt.Sprintf("class %s's constructor parameter %q has no type annotation", cls.Name, p.Name),
					Severity: SeverityBlocking,
				})
			}
			if p.IsMutableDefault() {
				violations = append(violations, Violation{
					RuleID:   RuleDependencyInjection,
					Code:     "MISSING_DECORATOR",
					Location: strconv.Itoa(init.StartLine),
					Message:  fmt.Sprintf("class %s's constructor parameter %q has a bare mutable default value", cls.Name, p.Name),
					Severity: SeverityBlocking,
				})
			}
		}
	}

	for _, a := range mod.Assignments {
		if a.IsMutableLiteral() {
			violations = append(violations, Violation{
				RuleID:   RuleDependencyInjection,
				Code:     "MUTABLE_GLOBAL",
				Location: strconv.Itoa(a.Line),
				Message:  fmt.Sprintf("module-level name %q binds a mutable literal instead of being constructor-injected", a.Name),
				Severity: SeverityBlocking,
			})
		}
	}

	return violations
}

func derivesFrom(cls Class, base string) bool {
	if base == "" {
		return false
	}
	for _, b := range cls.Bases {
		if b == base {
			return true
		}
	}
	return false
}

func findMethod(cls Class, name string) *Function {
	for i := range cls.Methods {
		if cls.Methods[i].Name == name {
			return &cls.Methods[i]
		}
	}
	return nil
}

func hasDecorator(decorators []string, name string) bool {
	if name == "" {
		return false
	}
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}
