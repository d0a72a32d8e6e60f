// Package vec provides the small fixed-size vectors shared by the motion packages.
package vec

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vec6 is an ordered 6-channel vector: joint angles in radians, or a
// cartesian pose sample laid out as x, y, z, roll, pitch, yaw.
type Vec6 [6]float64

// NaN returns the "no target" sentinel.
func NaN() Vec6 {
	n := math.NaN()
	return Vec6{n, n, n, n, n, n}
}

// HasNaN reports whether any channel is NaN.
func (v Vec6) HasNaN() bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

// Finite reports whether every channel is neither NaN nor infinite.
func (v Vec6) Finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Add returns v + o.
func (v Vec6) Add(o Vec6) Vec6 {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Sub returns v - o.
func (v Vec6) Sub(o Vec6) Vec6 {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// Scale returns v * k.
func (v Vec6) Scale(k float64) Vec6 {
	for i := range v {
		v[i] *= k
	}
	return v
}

// MaxAbs returns the largest absolute channel value.
func (v Vec6) MaxAbs() float64 {
	m := 0.0
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

// ApproxEqual reports whether every channel of a and b differs by at most eps.
func ApproxEqual(a, b Vec6, eps float64) bool {
	return a.Sub(b).MaxAbs() <= eps
}

// Lerp returns (1-alpha)*a + alpha*b channel by channel.
func Lerp(a, b Vec6, alpha float64) Vec6 {
	return a.Scale(1 - alpha).Add(b.Scale(alpha))
}

// LerpR3 returns (1-alpha)*a + alpha*b.
func LerpR3(a, b r3.Vector, alpha float64) r3.Vector {
	return a.Mul(1 - alpha).Add(b.Mul(alpha))
}

// Deg converts degrees to radians.
func Deg(d float64) float64 {
	return d * math.Pi / 180
}
