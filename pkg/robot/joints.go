// Package robot connects the motion core to a six-joint feetech servo arm.
package robot

// JointName identifies a joint of the arm.
type JointName string

// Joint names in kinematic order, base first.
const (
	BaseYaw       JointName = "base_yaw"
	ShoulderPitch JointName = "shoulder_pitch"
	ElbowPitch    JointName = "elbow_pitch"
	ForearmRoll   JointName = "forearm_roll"
	WristPitch    JointName = "wrist_pitch"
	WristRoll     JointName = "wrist_roll"
)

// AllJoints returns all joint names in order (matching servo IDs 1-6 and
// the channels of a joint vector).
func AllJoints() []JointName {
	return []JointName{
		BaseYaw,
		ShoulderPitch,
		ElbowPitch,
		ForearmRoll,
		WristPitch,
		WristRoll,
	}
}
