// Package pickarm drives a six-joint feetech servo arm through two-phase
// pick maneuvers: return to a neutral joint pose, then lift along a
// cartesian path solved by inverse kinematics, and lower again.
//
// The operator holds an up or down command; the arm only moves while the
// command is held and freezes when it is released.
//
// # Installation
//
//	go install github.com/gwillem/pickarm/cmd/pickarm@latest
//
// # Usage
//
// First, find the arm and save its port:
//
//	pickarm scan
//
// Then run a maneuver:
//
//	pickarm run --maneuver gold_mid
//
// Or try it without hardware:
//
//	pickarm simulate --headless --command cycle
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/pickarm: CLI with scan, run, simulate and presets commands
//   - pkg/fsm: Generic finite state machine with impure guards
//   - pkg/trajectory: Line, Bezier and joint-space motion generators
//   - pkg/kinematics: Inverse kinematics for the arm
//   - pkg/pick: Pick maneuver sequencer and maneuver presets
//   - pkg/control: Fixed-rate control loop with watchdog and metrics
//   - pkg/robot: Arm control, calibration, simulation, and configuration
//   - pkg/link: Framed joint-target output over serial
//   - pkg/verify: Packet checksums
//   - pkg/vec: Six-channel vectors and poses
package pickarm
