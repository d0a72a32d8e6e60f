package vec

import "github.com/golang/geo/r3"

// Pose is a cartesian end-effector pose. Orientation holds roll, pitch and
// yaw in radians in its X, Y and Z fields.
type Pose struct {
	Position    r3.Vector `json:"position" yaml:"position"`
	Orientation r3.Vector `json:"orientation" yaml:"orientation"`
}

// NewPose builds a pose from position and roll/pitch/yaw triples.
func NewPose(xyz, rpy [3]float64) Pose {
	return Pose{
		Position:    r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		Orientation: r3.Vector{X: rpy[0], Y: rpy[1], Z: rpy[2]},
	}
}

// Vec6 flattens the pose to x, y, z, roll, pitch, yaw.
func (p Pose) Vec6() Vec6 {
	return Vec6{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z,
	}
}

// PoseFrom is the inverse of Pose.Vec6.
func PoseFrom(v Vec6) Pose {
	return NewPose([3]float64{v[0], v[1], v[2]}, [3]float64{v[3], v[4], v[5]})
}
