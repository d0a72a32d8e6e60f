package trajectory

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/pickarm/pkg/vec"
)

const eps = 1e-9

var (
	poseA = vec.NewPose([3]float64{0.52, 0, 0.1}, [3]float64{-math.Pi, -math.Pi / 2, -math.Pi})
	poseB = vec.NewPose([3]float64{0.52, 0, 0.32}, [3]float64{-math.Pi, -math.Pi / 2, -math.Pi})
	poseC = vec.NewPose([3]float64{0.1, -0.2, 0.4}, [3]float64{0.3, 0.2, -0.1})
)

func allKinds(total int) map[string]Trajectory {
	return map[string]Trajectory{
		"line":   NewLine().SetStart(poseA).SetEnd(poseC).SetTotalSteps(total),
		"bezier": NewBezier().SetStart(poseA).SetEnd(poseC).SetControlPoints(r3.Vector{X: 1}, r3.Vector{Y: 1}).SetTotalSteps(total),
		"joint":  NewJoint().SetStart(vec.Vec6{1, 2, 3, 4, 5, 6}).SetEnd(vec.Vec6{-1, 0, 1, 0, 2, 3}).SetTotalSteps(total),
	}
}

func TestCompletesAfterTotalSteps(t *testing.T) {
	t.Parallel()

	for _, total := range []int{2, 3, 10, 500} {
		for name, tr := range allKinds(total) {
			var last vec.Vec6
			for i := 1; i <= total; i++ {
				assert.False(t, tr.Complete(), "%s T=%d complete before step %d", name, total, i)
				last = tr.Next()
			}
			assert.True(t, tr.Complete(), "%s T=%d", name, total)
			assert.Equal(t, total+1, tr.Step(), "%s T=%d", name, total)

			// Extra samples hold the final value without advancing.
			assert.Equal(t, last, tr.Next(), "%s T=%d", name, total)
			assert.Equal(t, last, tr.Next(), "%s T=%d", name, total)
			assert.Equal(t, total+1, tr.Step(), "%s T=%d", name, total)
		}
	}
}

func TestResetKeepsEndpoints(t *testing.T) {
	t.Parallel()

	for name, tr := range allKinds(5) {
		var first []vec.Vec6
		for !tr.Complete() {
			first = append(first, tr.Next())
		}

		tr.Reset()
		assert.False(t, tr.Complete(), name)
		assert.Equal(t, 1, tr.Step(), name)
		assert.Equal(t, 5, tr.TotalSteps(), name)

		for i := range first {
			assert.Equal(t, first[i], tr.Next(), "%s sample %d", name, i+1)
		}
	}
}

func TestLineEndpoints(t *testing.T) {
	t.Parallel()

	l := NewLine().SetStart(poseA).SetEnd(poseC).SetTotalSteps(7)

	first := l.Next()
	assert.True(t, vec.ApproxEqual(first, poseA.Vec6(), eps), "first sample %v", first)

	var last vec.Vec6
	for !l.Complete() {
		last = l.Next()
	}
	assert.True(t, vec.ApproxEqual(last, poseC.Vec6(), eps), "last sample %v", last)
}

func TestLineIsLinear(t *testing.T) {
	t.Parallel()

	l := NewLine().SetStart(poseA).SetEnd(poseB).SetTotalSteps(11)
	for i := 0; i < 11; i++ {
		got := l.Next()
		want := vec.Lerp(poseA.Vec6(), poseB.Vec6(), float64(i)/10)
		require.True(t, vec.ApproxEqual(got, want, eps), "step %d: got %v want %v", i+1, got, want)
	}
}

func TestBezierDegeneratesToLine(t *testing.T) {
	t.Parallel()

	// A cubic is a straight uniform segment when its control points sit at
	// one and two thirds of the chord.
	chord := poseC.Position.Sub(poseA.Position)
	c1 := poseA.Position.Add(chord.Mul(1.0 / 3))
	c2 := poseA.Position.Add(chord.Mul(2.0 / 3))

	const total = 25
	b := NewBezier().SetStart(poseA).SetEnd(poseC).SetControlPoints(c1, c2).SetTotalSteps(total)
	l := NewLine().SetStart(poseA).SetEnd(poseC).SetTotalSteps(total)

	for i := 1; i <= total; i++ {
		got, want := b.Next(), l.Next()
		require.True(t, vec.ApproxEqual(got, want, 1e-12), "step %d: bezier %v line %v", i, got, want)
	}
}

func TestBezierControlPointsOnEndpoints(t *testing.T) {
	t.Parallel()

	// Control points equal to the endpoints keep the curve on the chord but
	// ease in and out: the position fraction is 3a²-2a³, not a.
	const total = 21
	b := NewBezier().
		SetStart(poseA).
		SetEnd(poseC).
		SetControlPoints(poseA.Position, poseC.Position).
		SetTotalSteps(total)
	l := NewLine().SetStart(poseA).SetEnd(poseC).SetTotalSteps(total)
	chord := poseC.Position.Sub(poseA.Position)

	var first, last vec.Vec6
	for i := 1; i <= total; i++ {
		got, line := b.Next(), l.Next()
		if i == 1 {
			first = got
		}
		last = got

		a := float64(i-1) / float64(total-1)
		frac := 3*a*a - 2*a*a*a
		want := poseA.Position.Add(chord.Mul(frac))
		assert.InDelta(t, want.X, got[0], eps, "step %d", i)
		assert.InDelta(t, want.Y, got[1], eps, "step %d", i)
		assert.InDelta(t, want.Z, got[2], eps, "step %d", i)

		// Still on the chord.
		off := r3.Vector{X: got[0], Y: got[1], Z: got[2]}.Sub(poseA.Position)
		assert.InDelta(t, 0, off.Cross(chord).Norm(), eps, "step %d", i)

		for k := 3; k < 6; k++ {
			assert.InDelta(t, line[k], got[k], eps, "step %d", i)
		}
	}
	assert.True(t, vec.ApproxEqual(first, poseA.Vec6(), eps))
	assert.True(t, vec.ApproxEqual(last, poseC.Vec6(), eps))

	// Away from the ends and the midpoint the easing differs from the line.
	b.Reset()
	l.Reset()
	for i := 1; i <= 5; i++ {
		b.Next()
		l.Next()
	}
	got, line := b.Next(), l.Next()
	assert.Greater(t, math.Abs(got[0]-line[0]), 1e-3)
}

func TestBezierEndpointsAndOrientation(t *testing.T) {
	t.Parallel()

	b := NewBezier().
		SetStart(poseA).
		SetEnd(poseC).
		SetControlPoints(r3.Vector{X: 2, Y: 2, Z: 2}, r3.Vector{X: -2, Y: -2, Z: -2}).
		SetTotalSteps(9)
	l := NewLine().SetStart(poseA).SetEnd(poseC).SetTotalSteps(9)

	samples := make([]vec.Vec6, 0, 9)
	for !b.Complete() {
		s := b.Next()
		ls := l.Next()
		// Orientation channels are never curved.
		for k := 3; k < 6; k++ {
			assert.InDelta(t, ls[k], s[k], eps)
		}
		samples = append(samples, s)
	}

	assert.True(t, vec.ApproxEqual(samples[0], poseA.Vec6(), eps))
	assert.True(t, vec.ApproxEqual(samples[len(samples)-1], poseC.Vec6(), eps))
}

func TestJointBlendEndpoints(t *testing.T) {
	t.Parallel()

	start := vec.Vec6{0.4, -1.2, 0.3, 0, 1, -0.5}
	end := vec.Vec6{0, -0.672690, -0.023241, math.Pi, 0.713385, 0}

	j := NewJoint().SetStart(start).SetEnd(end).SetTotalSteps(1000)
	var last vec.Vec6
	for !j.Complete() {
		last = j.Next()
	}
	assert.True(t, vec.ApproxEqual(last, end, 1e-12), "last sample %v", last)
}

func TestJointBlendStartsAndEndsAtRest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start, end vec.Vec6
		total      int
	}{
		{vec.Vec6{}, vec.Vec6{1, 1, 1, 1, 1, 1}, 1000},
		{vec.Vec6{3, -2, 0.5, 0, 0, 1}, vec.Vec6{-3, 2, -0.5, math.Pi, 0.7, 0}, 500},
		{vec.Vec6{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, vec.Vec6{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, 3},
		{vec.Vec6{1, 0, 0, 0, 0, 0}, vec.Vec6{0, 0, 0, 0, 0, 0}, 40},
	}

	for _, tc := range cases {
		j := NewJoint().SetStart(tc.start).SetEnd(tc.end).SetTotalSteps(tc.total)
		samples := []vec.Vec6{tc.start}
		for !j.Complete() {
			samples = append(samples, j.Next())
		}

		span := tc.end.Sub(tc.start).MaxAbs()
		mid := len(samples) / 2
		peak := samples[mid].Sub(samples[mid-1]).MaxAbs()
		first := samples[1].Sub(samples[0]).MaxAbs()
		last := samples[len(samples)-1].Sub(samples[len(samples)-2]).MaxAbs()

		// A cubic with zero end slopes has per-step change O(span/T^2) at
		// the ends, against O(span/T) in the middle.
		bound := 3*span/float64(tc.total*tc.total) + eps
		assert.LessOrEqual(t, first, bound, "T=%d first step", tc.total)
		assert.LessOrEqual(t, last, bound, "T=%d last step", tc.total)
		if span > 0 && tc.total >= 10 {
			assert.Less(t, first, peak)
			assert.Less(t, last, peak)
		}
	}
}

func TestDegenerateBudgets(t *testing.T) {
	t.Parallel()

	// A single step has no interior and samples the start.
	l := NewLine().SetStart(poseA).SetEnd(poseC).SetTotalSteps(1)
	got := l.Next()
	assert.True(t, vec.ApproxEqual(got, poseA.Vec6(), eps))
	assert.False(t, math.IsNaN(got[0]))
	assert.True(t, l.Complete())

	// Never configured: complete at once, zero sample.
	j := NewJoint()
	assert.Equal(t, vec.Vec6{}, j.Next())
	assert.True(t, j.Complete())
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindLine, KindBezier, KindJoint} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("spline")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
