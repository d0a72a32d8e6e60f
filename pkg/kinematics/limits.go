package kinematics

import (
	"fmt"
	"math"

	"github.com/gwillem/pickarm/pkg/vec"
)

// Range is an inclusive joint range in radians.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether x lies in the range.
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// Limits holds one range per joint.
type Limits [6]Range

// DefaultLimits allows one full turn either way on every joint.
func DefaultLimits() Limits {
	var l Limits
	for i := range l {
		l[i] = Range{Min: -2 * math.Pi, Max: 2 * math.Pi}
	}
	return l
}

// Check returns an error for the first non-finite or out-of-range joint.
func (l Limits) Check(joints vec.Vec6) error {
	for i, q := range joints {
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("joint %d: %w", i+1, ErrNonFinite)
		}
		if !l[i].Contains(q) {
			return fmt.Errorf("joint %d at %.4f outside [%.4f, %.4f]: %w", i+1, q, l[i].Min, l[i].Max, ErrJointLimit)
		}
	}
	return nil
}
