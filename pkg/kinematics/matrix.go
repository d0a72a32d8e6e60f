package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
)

// mat3 is a row-major 3x3 rotation matrix.
type mat3 [3]r3.Vector

func rotX(a float64) mat3 {
	s, c := math.Sincos(a)
	return mat3{{X: 1}, {Y: c, Z: -s}, {Y: s, Z: c}}
}

func rotY(a float64) mat3 {
	s, c := math.Sincos(a)
	return mat3{{X: c, Z: s}, {Y: 1}, {X: -s, Z: c}}
}

func rotZ(a float64) mat3 {
	s, c := math.Sincos(a)
	return mat3{{X: c, Y: -s}, {X: s, Y: c}, {Z: 1}}
}

func (m mat3) col(i int) r3.Vector {
	switch i {
	case 0:
		return r3.Vector{X: m[0].X, Y: m[1].X, Z: m[2].X}
	case 1:
		return r3.Vector{X: m[0].Y, Y: m[1].Y, Z: m[2].Y}
	default:
		return r3.Vector{X: m[0].Z, Y: m[1].Z, Z: m[2].Z}
	}
}

func (m mat3) transpose() mat3 {
	return mat3{m.col(0), m.col(1), m.col(2)}
}

func (m mat3) mul(o mat3) mat3 {
	c0, c1, c2 := o.col(0), o.col(1), o.col(2)
	var out mat3
	for i, row := range m {
		out[i] = r3.Vector{X: row.Dot(c0), Y: row.Dot(c1), Z: row.Dot(c2)}
	}
	return out
}

// rpyMatrix builds Rz(yaw)·Ry(pitch)·Rx(roll).
func rpyMatrix(rpy r3.Vector) mat3 {
	return rotZ(rpy.Z).mul(rotY(rpy.Y)).mul(rotX(rpy.X))
}

// rpy is the inverse of rpyMatrix.
func (m mat3) rpy() r3.Vector {
	return r3.Vector{
		X: math.Atan2(m[2].Y, m[2].Z),
		Y: math.Atan2(-m[2].X, math.Hypot(m[2].Y, m[2].Z)),
		Z: math.Atan2(m[1].X, m[0].X),
	}
}
