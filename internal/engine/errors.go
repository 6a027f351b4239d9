package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoCombatants     = errors.New("engine: both sides need at least one combatant")
	ErrDuplicateID      = errors.New("engine: duplicate combatant id")
	ErrUncompiledAction = errors.New("engine: action not compiled")
	ErrSessionOver      = errors.New("engine: session already ended")
)

// InsufficientResourceError means the actor lacks the spell slot an action needs.
type InsufficientResourceError struct {
	Actor     string
	Action    string
	SlotLevel int
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("%s cannot cast %s: no level %d+ slot left", e.Actor, e.Action, e.SlotLevel)
}

// InvalidTargetError means the chosen target is down, out of reach or not
// eligible for the action.
type InvalidTargetError struct {
	Actor  string
	Action string
	Target string
	Reason string
}

func (e *InvalidTargetError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s has no valid target for %s: %s", e.Actor, e.Action, e.Reason)
	}
	return fmt.Sprintf("%s cannot use %s on %s: %s", e.Actor, e.Action, e.Target, e.Reason)
}

// StateInvariantViolation reports corrupted session state. It aborts the session.
type StateInvariantViolation struct {
	Detail string
	Err    error
}

func (e *StateInvariantViolation) Error() string {
	if e.Err != nil {
		return "engine: state invariant violated: " + e.Detail + ": " + e.Err.Error()
	}
	return "engine: state invariant violated: " + e.Detail
}

func (e *StateInvariantViolation) Unwrap() error { return e.Err }

// IsFatal reports whether err must abort the session.
func IsFatal(err error) bool {
	var v *StateInvariantViolation
	return errors.As(err, &v)
}
