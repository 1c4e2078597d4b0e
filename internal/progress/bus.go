// Package progress implements the controller's telemetry pathway: a single Publish operation
// fanned out to zero or more observers attached at construction (spec §4.7). Grounded on the
// publish/observer shape implicit in ouroboros.go's onToolRegistered hot-reload callback
// (generalised from a single callback slot to an observer list) and on the teacher's
// logging.StartTimer/Timer.Stop elapsed-duration idiom for ProgressEvent.ElapsedSeconds.
package progress

import (
	"fmt"

	"extractforge/internal/logging"
)

// Status is the closed set of a step's lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StepIndex names the seven logical phases of a run (spec §4.5's telemetry note); the last two
// may be collapsed by a caller that treats finalize/tests as one step.
type StepIndex int

const (
	StepParse StepIndex = iota + 1
	StepPlan
	StepCode
	StepValidate
	StepWrite
	StepFinalize
	StepTests
)

func (s StepIndex) String() string {
	switch s {
	case StepParse:
		return "parse"
	case StepPlan:
		return "plan"
	case StepCode:
		return "code"
	case StepValidate:
		return "validate"
	case StepWrite:
		return "write"
	case StepFinalize:
		return "finalize"
	case StepTests:
		return "tests"
	default:
		return "unknown"
	}
}

// Event is one ProgressEvent (spec §3).
type Event struct {
	StepIndex      StepIndex
	Name           string
	Status         Status
	ElapsedSeconds float64
	Message        string
}

// Observer receives every Event published during a run. Observers must be non-blocking relative
// to the pipeline (spec §4.7): a slow observer slows the pipeline, by design — there is no
// internal buffering or delivery guarantee across process restart.
type Observer func(Event)

// Bus fans one Publish call out to every attached observer, in attachment order. The observer
// list is fixed at construction (spec §5's "mutation of the observer list during a run is
// disallowed"); there is no Attach/Detach after NewBus.
type Bus struct {
	observers []Observer
}

// NewBus constructs a Bus with the given observers, any of which may be nil-safe no-ops supplied
// by the caller (e.g. a CLI that only wants console output, or no observer at all).
func NewBus(observers ...Observer) *Bus {
	return &Bus{observers: observers}
}

// Publish fans an event out to every observer, recovering and logging a panicking observer so
// one broken observer never affects the pipeline outcome (spec §4.5's telemetry note).
func (b *Bus) Publish(evt Event) {
	for _, obs := range b.observers {
		if obs == nil {
			continue
		}
		b.dispatch(obs, evt)
	}
}

func (b *Bus) dispatch(obs Observer, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryProgress).Error("progress observer panicked: %v", r)
		}
	}()
	obs(evt)
}

// Noop is a convenience Observer that discards every event, useful where the caller requires a
// non-nil observer slot but has no telemetry sink.
func Noop(Event) {}

func (e Event) String() string {
	return fmt.Sprintf("[%d/%d %s] %s: %s (%.2fs)", e.StepIndex, StepTests, e.Name, e.Status, e.Message, e.ElapsedSeconds)
}
