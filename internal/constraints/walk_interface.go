package constraints

import (
	"fmt"
	"strconv"
	"strings"

	"extractforge/internal/config"
)

// interfaceWalker enforces spec §4.4 walker 1: every public class matching the extractor-shape
// heuristic (its name ends with "Extractor", or it is explicitly named under
// ConstraintConfig.RequiredInterfaces) must derive from the configured base interface name and
// define an async extract method.
type interfaceWalker struct{}

func (interfaceWalker) RuleID() RuleID { return RuleInterface }

func (interfaceWalker) Check(mod *Module, policy config.ConstraintConfig) []Violation {
	required := policy.RequiredInterfaceName
	if required == "" {
		return nil
	}

	var violations []Violation
	for _, cls := range mod.Classes {
		if !isPublicClassName(cls.Name) || !isExtractorShaped(cls, policy) {
			continue
		}
		if !derivesFrom(cls, required) {
			violations = append(violations, Violation{
				RuleID:   RuleInterface,
				Code:     "MISSING_INTERFACE",
				Location: strconv.Itoa(cls.StartLine),
				Message:  fmt.Sprintf("class %s does not derive from required interface %s", cls.Name, required),
				Severity: SeverityBlocking,
			})
			continue
		}
		if !hasAsyncExtractMethod(cls) {
			violations = append(violations, Violation{
				RuleID:   RuleInterface,
				Code:     "MISSING_METHOD",
				Location: strconv.Itoa(cls.StartLine),
				Message:  fmt.Sprintf("class %s has no async extract method", cls.Name),
				Severity: SeverityBlocking,
			})
		}
	}
	return violations
}

// isExtractorShaped reports whether cls is subject to the interface walker at all: either its
// name follows the "Extractor" naming convention, or it is explicitly listed under
// ConstraintConfig.RequiredInterfaces.
func isExtractorShaped(cls Class, policy config.ConstraintConfig) bool {
	if strings.HasSuffix(cls.Name, "Extractor") {
		return true
	}
	for _, name := range policy.RequiredInterfaces {
		if name == cls.Name {
			return true
		}
	}
	return false
}

func isPublicClassName(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

func hasAsyncExtractMethod(cls Class) bool {
	for _, m := range cls.Methods {
		if m.Name == "extract" && m.IsAsync {
			return true
		}
	}
	return false
}
