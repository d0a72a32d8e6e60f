// Package kinematics maps cartesian end-effector poses to joint angles for
// a six-joint arm with a spherical wrist.
//
// Joint 1 yaws the base about the vertical axis. Joints 2 and 3 pitch the
// upper arm and forearm in the vertical plane, positive upward. Joints 4, 5
// and 6 form the wrist as roll, pitch, roll about the forearm axis. The tool
// points along the wrist x axis. Poses are x, y, z in metres followed by
// roll, pitch, yaw in radians (applied as yaw·pitch·roll).
package kinematics

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/gwillem/pickarm/pkg/vec"
)

var (
	ErrUnreachable = errors.New("pose unreachable")
	ErrJointLimit  = errors.New("joint out of limits")
	ErrNonFinite   = errors.New("non-finite joint value")
)

// wristSingular is the wrist pitch below which the two wrist rolls share an axis.
const wristSingular = 1e-9

// Solver maps a pose sample to joint angles.
type Solver interface {
	Inverse(pose vec.Vec6) (vec.Vec6, error)
}

// SolverFunc adapts a function to Solver.
type SolverFunc func(pose vec.Vec6) (vec.Vec6, error)

// Inverse calls f.
func (f SolverFunc) Inverse(pose vec.Vec6) (vec.Vec6, error) {
	return f(pose)
}

// Geometry holds the link lengths of the arm in metres.
type Geometry struct {
	BaseHeight  float64 `json:"base_height" yaml:"base_height"`
	UpperArm    float64 `json:"upper_arm" yaml:"upper_arm"`
	Forearm     float64 `json:"forearm" yaml:"forearm"`
	WristLength float64 `json:"wrist_length" yaml:"wrist_length"`
}

// DefaultGeometry returns the link lengths of the competition arm.
func DefaultGeometry() Geometry {
	return Geometry{
		BaseHeight:  0.20,
		UpperArm:    0.40,
		Forearm:     0.35,
		WristLength: 0.10,
	}
}

// Validate checks that every link has a positive length.
func (g Geometry) Validate() error {
	if g.UpperArm <= 0 || g.Forearm <= 0 || g.WristLength < 0 {
		return fmt.Errorf("invalid geometry %+v", g)
	}
	return nil
}

// Arm is the closed-form solver for Geometry.
type Arm struct {
	geo Geometry
}

// NewArm creates a solver for g.
func NewArm(g Geometry) (*Arm, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Arm{geo: g}, nil
}

// Geometry returns the solver's link lengths.
func (a *Arm) Geometry() Geometry {
	return a.geo
}

// Inverse returns the elbow-up joint solution for pose.
func (a *Arm) Inverse(pose vec.Vec6) (vec.Vec6, error) {
	if !pose.Finite() {
		return vec.Vec6{}, fmt.Errorf("inverse of %v: %w", pose, ErrNonFinite)
	}
	p := vec.PoseFrom(pose)
	rot := rpyMatrix(p.Orientation)

	// Wrist centre sits one wrist length behind the tool along its axis.
	wc := p.Position.Sub(rot.col(0).Mul(a.geo.WristLength))

	q1 := math.Atan2(wc.Y, wc.X)
	rho := math.Hypot(wc.X, wc.Y)
	s := wc.Z - a.geo.BaseHeight

	a2, a3 := a.geo.UpperArm, a.geo.Forearm
	d := (rho*rho + s*s - a2*a2 - a3*a3) / (2 * a2 * a3)
	if d > 1 || d < -1 {
		return vec.Vec6{}, fmt.Errorf("wrist centre %v: %w", wc, ErrUnreachable)
	}
	q3 := math.Atan2(-math.Sqrt(1-d*d), d)
	q2 := math.Atan2(s, rho) - math.Atan2(a3*math.Sin(q3), a2+a3*math.Cos(q3))

	wrist := armFrame(q1, q2+q3).transpose().mul(rot)
	q4, q5, q6 := wristAngles(wrist)

	return vec.Vec6{q1, q2, q3, q4, q5, q6}, nil
}

// Forward returns the pose reached by joints.
func (a *Arm) Forward(joints vec.Vec6) vec.Vec6 {
	pos, rot := a.forward(joints)
	return vec.Pose{Position: pos, Orientation: rot.rpy()}.Vec6()
}

func (a *Arm) forward(q vec.Vec6) (r3.Vector, mat3) {
	reach := a.geo.UpperArm*math.Cos(q[1]) + a.geo.Forearm*math.Cos(q[1]+q[2])
	height := a.geo.BaseHeight + a.geo.UpperArm*math.Sin(q[1]) + a.geo.Forearm*math.Sin(q[1]+q[2])
	wc := r3.Vector{X: reach * math.Cos(q[0]), Y: reach * math.Sin(q[0]), Z: height}

	rot := armFrame(q[0], q[1]+q[2]).mul(rotX(q[3])).mul(rotY(q[4])).mul(rotX(q[5]))
	return wc.Add(rot.col(0).Mul(a.geo.WristLength)), rot
}

// armFrame is the forearm frame for base yaw q1 and forearm elevation phi.
func armFrame(q1, phi float64) mat3 {
	return rotZ(q1).mul(rotY(-phi))
}

// wristAngles decomposes m as Rx(q4)·Ry(q5)·Rx(q6) with q5 in [0, pi].
func wristAngles(m mat3) (q4, q5, q6 float64) {
	sinQ5 := math.Hypot(m[0].Y, m[0].Z)
	q5 = math.Atan2(sinQ5, m[0].X)
	if sinQ5 < wristSingular {
		return 0, q5, math.Atan2(-m[1].Z, m[1].Y)
	}
	return math.Atan2(m[1].X, -m[2].X), q5, math.Atan2(m[0].Y, m[0].Z)
}
