package robot

import (
	"context"
	"math"
	"sync"

	"github.com/gwillem/pickarm/pkg/vec"
)

// SimArm is an in-memory arm. Each write moves every joint toward its
// target by at most MaxStep radians; zero means targets are reached at once.
type SimArm struct {
	MaxStep float64

	mu      sync.Mutex
	angles  vec.Vec6
	enabled bool
	writes  int
}

// NewSimArm creates a simulated arm resting at initial.
func NewSimArm(initial vec.Vec6, maxStep float64) *SimArm {
	return &SimArm{MaxStep: maxStep, angles: initial}
}

// Enable enables torque.
func (s *SimArm) Enable(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	return nil
}

// Disable disables torque. A disabled arm ignores writes.
func (s *SimArm) Disable(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	return nil
}

// Enabled reports whether torque is on.
func (s *SimArm) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Close is a no-op.
func (s *SimArm) Close() error { return nil }

// ReadAngles returns the current joint angles.
func (s *SimArm) ReadAngles(context.Context) (vec.Vec6, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angles, nil
}

// WriteAngles moves toward angles. Non-finite channels are skipped.
func (s *SimArm) WriteAngles(_ context.Context, angles vec.Vec6) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}
	s.writes++
	for i, target := range angles {
		if math.IsNaN(target) || math.IsInf(target, 0) {
			continue
		}
		delta := target - s.angles[i]
		if s.MaxStep > 0 {
			delta = max(-s.MaxStep, min(s.MaxStep, delta))
		}
		s.angles[i] += delta
	}
	return nil
}

// Writes counts the writes applied while enabled.
func (s *SimArm) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
