package constraints

import "extractforge/internal/config"

// Walker is implemented by each of the seven fixed checks (spec §4.4). Check never panics on
// malformed input; the engine recovers any walker panic into a VALIDATOR_ERROR violation so one
// broken walker can't take down the whole pass (spec §4.4's VALIDATOR_ERROR handling).
type Walker interface {
	RuleID() RuleID
	Check(mod *Module, policy config.ConstraintConfig) []Violation
}

// walkers returns the fixed, ordered battery of seven checks. The set is closed: the engine never
// consults any other walker, and no configuration can add or remove one (only each walker's
// thresholds are configurable via ConstraintConfig).
func walkers() []Walker {
	return []Walker{
		interfaceWalker{},
		dependencyInjectionWalker{},
		typeHintWalker{},
		importWalker{},
		complexityWalker{},
		securityWalker{},
		loggingWalker{},
	}
}
