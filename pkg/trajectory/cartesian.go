package trajectory

import (
	"github.com/golang/geo/r3"

	"github.com/gwillem/pickarm/pkg/vec"
)

// Line moves the end effector along a straight segment. Position and
// orientation are interpolated independently per axis.
type Line struct {
	stepper
	start, end vec.Pose
}

// NewLine creates an unconfigured line trajectory.
func NewLine() *Line {
	return &Line{stepper: newStepper()}
}

// SetStart sets the start pose.
func (l *Line) SetStart(p vec.Pose) *Line {
	l.start = p
	return l
}

// SetEnd sets the end pose.
func (l *Line) SetEnd(p vec.Pose) *Line {
	l.end = p
	return l
}

// SetTotalSteps sets the step budget.
func (l *Line) SetTotalSteps(n int) *Line {
	l.total = n
	return l
}

// Start returns the configured start pose.
func (l *Line) Start() vec.Pose { return l.start }

// End returns the configured end pose.
func (l *Line) End() vec.Pose { return l.end }

// Next returns the next pose sample as x, y, z, roll, pitch, yaw.
func (l *Line) Next() vec.Vec6 {
	return l.advance(func() vec.Vec6 {
		a := l.alpha()
		return vec.Pose{
			Position:    vec.LerpR3(l.start.Position, l.end.Position, a),
			Orientation: vec.LerpR3(l.start.Orientation, l.end.Orientation, a),
		}.Vec6()
	})
}

// Bezier moves the end effector along a cubic Bezier curve through two
// control points. Only the position follows the curve; orientation is
// interpolated linearly between the end poses.
type Bezier struct {
	stepper
	start, end vec.Pose
	c1, c2     r3.Vector
}

// NewBezier creates an unconfigured Bezier trajectory.
func NewBezier() *Bezier {
	return &Bezier{stepper: newStepper()}
}

// SetStart sets the start pose.
func (b *Bezier) SetStart(p vec.Pose) *Bezier {
	b.start = p
	return b
}

// SetEnd sets the end pose.
func (b *Bezier) SetEnd(p vec.Pose) *Bezier {
	b.end = p
	return b
}

// SetControlPoints sets the two interior control points.
func (b *Bezier) SetControlPoints(c1, c2 r3.Vector) *Bezier {
	b.c1, b.c2 = c1, c2
	return b
}

// SetTotalSteps sets the step budget.
func (b *Bezier) SetTotalSteps(n int) *Bezier {
	b.total = n
	return b
}

// Next returns the next pose sample as x, y, z, roll, pitch, yaw.
func (b *Bezier) Next() vec.Vec6 {
	return b.advance(func() vec.Vec6 {
		a := b.alpha()
		return vec.Pose{
			Position:    casteljau(b.start.Position, b.c1, b.c2, b.end.Position, a),
			Orientation: vec.LerpR3(b.start.Orientation, b.end.Orientation, a),
		}.Vec6()
	})
}

// casteljau evaluates the cubic curve p0..p3 at t by repeated lerping.
func casteljau(p0, p1, p2, p3 r3.Vector, t float64) r3.Vector {
	p01 := vec.LerpR3(p0, p1, t)
	p12 := vec.LerpR3(p1, p2, t)
	p23 := vec.LerpR3(p2, p3, t)
	p012 := vec.LerpR3(p01, p12, t)
	p123 := vec.LerpR3(p12, p23, t)
	return vec.LerpR3(p012, p123, t)
}
