package constraints

import (
	"fmt"
	"strings"

	"extractforge/internal/config"
)

// importWalker enforces ConstraintConfig.ForbiddenImports per-import and
// ConstraintConfig.RequiredImports as a single per-file aggregate (spec §4.4 walker 4):
// FORBIDDEN_IMPORT fires once per offending import statement; MISSING_REQUIRED_IMPORT fires at
// most once per file, covering every configured required import that never appears anywhere in
// the module, rather than once per missing name.
type importWalker struct{}

func (importWalker) RuleID() RuleID { return RuleImport }

func (importWalker) Check(mod *Module, policy config.ConstraintConfig) []Violation {
	var violations []Violation
	present := map[string]bool{}

	for _, imp := range mod.Imports {
		module := imp.Module
		if module == "" && len(imp.Names) > 0 {
			module = imp.Names[0]
		}
		root := strings.SplitN(module, ".", 2)[0]
		present[module] = true
		present[root] = true

		for _, forbidden := range policy.ForbiddenImports {
			if root == forbidden || module == forbidden {
				violations = append(violations, Violation{
					RuleID:   RuleImport,
					Code:     "FORBIDDEN_IMPORT",
					Location: imp.RawLine,
					Message:  fmt.Sprintf("import of %q is forbidden by policy", module),
					Severity: SeverityBlocking,
				})
			}
		}
	}

	var missing []string
	for _, required := range policy.RequiredImports {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		violations = append(violations, Violation{
			RuleID:   RuleImport,
			Code:     "MISSING_REQUIRED_IMPORT",
			Location: "1",
			Message:  fmt.Sprintf("required import(s) not found anywhere in file: %s", strings.Join(missing, ", ")),
			Severity: SeverityBlocking,
		})
	}
	return violations
}
