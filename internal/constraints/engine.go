package constraints

import (
	"fmt"
	"sync"

	"extractforge/internal/config"
	"extractforge/internal/logging"
)

// Engine runs the fixed seven-walker battery against Python source under a live, swappable
// ConstraintConfig policy. Grounded on internal/autopoiesis/checker.go's
// SafetyChecker{config, policy, allowedPkgs} construction shape, rebuilt around tree-sitter Python
// parsing instead of go/parser+Mangle (resolved single-engine decision, SPEC_FULL §9/§11).
type Engine struct {
	mu      sync.RWMutex
	policy  config.ConstraintConfig
	walkers []Walker
}

// NewEngine constructs an Engine with the given starting policy.
func NewEngine(policy config.ConstraintConfig) *Engine {
	return &Engine{policy: policy, walkers: walkers()}
}

// UpdateConfig swaps the active policy atomically (copy-on-swap): in-flight Validate calls finish
// against the policy snapshot they started with, and every call after UpdateConfig returns sees
// the new policy. Satisfies config.Updater for fsnotify-driven hot reload.
func (e *Engine) UpdateConfig(policy config.ConstraintConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = policy
}

func (e *Engine) currentPolicy() config.ConstraintConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// ValidateSource parses content as Python and runs all seven walkers. A tree-sitter parse error
// becomes a single SYNTAX_ERROR violation rather than a Go error return, since spec §4.4 treats
// unparseable generated code as a validation failure the refinement loop can retry against, not a
// pipeline-level fault. tree-sitter itself is error-tolerant — syntactically invalid Python still
// produces a full tree with ERROR nodes rather than a Go error — so the root node's own HasError
// is what actually detects this case; the walkers never run against a malformed tree.
func (e *Engine) ValidateSource(path string, content []byte) ValidationResult {
	timer := logging.StartTimer(logging.CategoryConstraint, "Engine.ValidateSource")
	defer timer.Stop()

	mod, err := ParseModule(content)
	if err != nil {
		return ValidationResult{
			Path: path,
			Violations: []Violation{{
				RuleID:   RuleInterface,
				Code:     "SYNTAX_ERROR",
				Location: "1",
				Message:  fmt.Sprintf("could not parse module: %v", err),
				Severity: SeverityBlocking,
			}},
		}
	}
	if mod.HasError {
		return ValidationResult{
			Path: path,
			Violations: []Violation{{
				RuleID:   RuleInterface,
				Code:     "SYNTAX_ERROR",
				Location: "1",
				Message:  "source contains a structurally significant parse error",
				Severity: SeverityBlocking,
			}},
		}
	}

	policy := e.currentPolicy()
	result := ValidationResult{Path: path}
	for _, w := range e.walkers {
		result.Violations = append(result.Violations, e.runWalker(w, mod, policy)...)
	}
	if !result.Passed() {
		logging.ConstraintDebug("validation of %s found %d violation(s)", path, len(result.Violations))
	}
	return result
}

// runWalker recovers a panicking walker into a single VALIDATOR_ERROR violation so one broken
// walker never aborts the rest of the battery (spec §4.4's VALIDATOR_ERROR handling).
func (e *Engine) runWalker(w Walker, mod *Module, policy config.ConstraintConfig) (violations []Violation) {
	defer func() {
		if r := recover(); r != nil {
			logging.ConstraintError("walker %s panicked: %v", w.RuleID(), r)
			violations = []Violation{{
				RuleID:   w.RuleID(),
				Code:     "VALIDATOR_ERROR",
				Location: "1",
				Message:  fmt.Sprintf("walker %s failed: %v", w.RuleID(), r),
				Severity: SeverityBlocking,
			}}
		}
	}()
	return w.Check(mod, policy)
}
