// Package trajectory generates stepwise interpolated arm motions.
//
// Every generator is configured through fluent setters and evaluated one
// sample per call to Next. The step counter starts at 1; once it passes the
// total step budget the generator is complete and keeps returning its final
// sample until Reset is called.
package trajectory

import (
	"fmt"
	"strings"

	"github.com/gwillem/pickarm/pkg/vec"
)

// Trajectory is a stepwise motion generator.
type Trajectory interface {
	// Next advances by one step and returns the new sample. A complete
	// trajectory returns its last sample without advancing.
	Next() vec.Vec6
	// Reset rewinds to step 1 and clears completion. Endpoints are kept.
	Reset()
	// Complete reports whether every step has been sampled.
	Complete() bool
	// Step returns the 1-based step counter.
	Step() int
	// TotalSteps returns the configured step budget.
	TotalSteps() int
}

// Kind names a trajectory variant.
type Kind int

const (
	KindLine Kind = iota + 1
	KindBezier
	KindJoint
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindBezier:
		return "bezier"
	case KindJoint:
		return "joint"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line":
		return KindLine, nil
	case "bezier":
		return KindBezier, nil
	case "joint":
		return KindJoint, nil
	default:
		return 0, fmt.Errorf("unknown trajectory kind %q", s)
	}
}

// stepper holds the progress bookkeeping shared by all variants.
type stepper struct {
	total    int
	current  int
	complete bool
	last     vec.Vec6
}

func newStepper() stepper {
	return stepper{current: 1}
}

// alpha is the normalized progress of the current step. Budgets below two
// steps have no interior, so they stay at the start.
func (s *stepper) alpha() float64 {
	if s.total < 2 {
		return 0
	}
	return float64(s.current-1) / float64(s.total-1)
}

// advance evaluates sample at the current step if one remains.
func (s *stepper) advance(sample func() vec.Vec6) vec.Vec6 {
	if s.current <= s.total {
		s.last = sample()
		s.current++
	}
	if s.current > s.total {
		s.complete = true
	}
	return s.last
}

func (s *stepper) Reset() {
	s.current = 1
	s.complete = false
}

func (s *stepper) Complete() bool  { return s.complete }
func (s *stepper) Step() int       { return s.current }
func (s *stepper) TotalSteps() int { return s.total }
