// Package fsm is a small, synchronous, generic finite-state machine.
//
// States and transitions are registered into a table keyed by (state, event).
// Each pair has at most one transition. A transition's guard may have side
// effects: it is evaluated every time its event is processed and reports
// whether the transition is ready to fire or should keep waiting.
//
// A Machine is not safe for concurrent use. It is meant to be owned and
// driven by a single control loop.
package fsm

import (
	"errors"
	"log/slog"
)

// Readiness is the result of evaluating a guard.
type Readiness int

const (
	// Advance keeps the current state. Side effects of the guard persist.
	Advance Readiness = iota
	// Ready fires the transition.
	Ready
)

func (r Readiness) String() string {
	if r == Ready {
		return "ready"
	}
	return "advance"
}

var (
	ErrUnknownState        = errors.New("unknown state")
	ErrDuplicateTransition = errors.New("duplicate transition")
)

// Logger is the default logger used when none is provided
var Logger = slog.Default()
