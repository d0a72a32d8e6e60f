package trajectory

import "github.com/gwillem/pickarm/pkg/vec"

// Joint moves six joints independently along a cubic blend with zero
// velocity at both ends, so the arm starts and stops at rest.
type Joint struct {
	stepper
	start, end vec.Vec6
}

// NewJoint creates an unconfigured joint-space trajectory.
func NewJoint() *Joint {
	return &Joint{stepper: newStepper()}
}

// SetStart sets the start joint angles.
func (j *Joint) SetStart(v vec.Vec6) *Joint {
	j.start = v
	return j
}

// SetEnd sets the target joint angles.
func (j *Joint) SetEnd(v vec.Vec6) *Joint {
	j.end = v
	return j
}

// SetTotalSteps sets the step budget.
func (j *Joint) SetTotalSteps(n int) *Joint {
	j.total = n
	return j
}

// Start returns the configured start angles.
func (j *Joint) Start() vec.Vec6 { return j.start }

// End returns the configured target angles.
func (j *Joint) End() vec.Vec6 { return j.end }

// Next returns the next joint-angle sample.
func (j *Joint) Next() vec.Vec6 {
	return j.advance(func() vec.Vec6 {
		return blend(j.start, j.end, float64(j.current), float64(j.total))
	})
}

// blend evaluates a0 + a2*s^2 + a3*s^3 with a2 = 3d/T^2 and a3 = -2d/T^3,
// which reaches end at s = T with zero slope at s = 0 and s = T.
func blend(start, end vec.Vec6, s, total float64) vec.Vec6 {
	if total <= 0 {
		return start
	}
	d := end.Sub(start)
	a2 := d.Scale(3 / (total * total))
	a3 := d.Scale(-2 / (total * total * total))
	return start.Add(a2.Scale(s * s)).Add(a3.Scale(s * s * s))
}
