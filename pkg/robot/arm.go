package robot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/pickarm/pkg/vec"
)

// Arm represents the six-joint arm on a feetech servo bus.
type Arm struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
	ids         [6]int
}

// NewArm creates and initializes an arm connection.
func NewArm(port string, cal Calibration) (*Arm, error) {
	if len(cal) == 0 {
		cal = DefaultCalibration()
	}

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	a := &Arm{
		bus:         bus,
		group:       feetech.NewServoGroupByIDs(bus, cal.IDs()...),
		calibration: cal,
	}
	for i, name := range AllJoints() {
		if jc, ok := cal[name]; ok {
			a.ids[i] = jc.ID
		}
	}
	return a, nil
}

// Close closes the arm's bus connection.
func (a *Arm) Close() error {
	return a.bus.Close()
}

// Enable enables torque on all servos.
func (a *Arm) Enable(ctx context.Context) error {
	return a.group.EnableAll(ctx)
}

// Disable disables torque on all servos.
func (a *Arm) Disable(ctx context.Context) error {
	return a.group.DisableAll(ctx)
}

// ReadAngles reads the joint angles in radians. Joints without calibration
// or without a reply read as NaN.
func (a *Arm) ReadAngles(ctx context.Context) (vec.Vec6, error) {
	raw, err := a.group.Positions(ctx)
	if err != nil {
		return vec.NaN(), fmt.Errorf("read positions: %w", err)
	}

	angles := vec.NaN()
	for id, pos := range raw {
		name, jc, ok := a.calibration.ByID(id)
		if !ok {
			continue
		}
		for i, n := range AllJoints() {
			if n == name {
				angles[i] = jc.Radians(pos)
			}
		}
	}
	return angles, nil
}

// WriteAngles commands joint angles in radians. NaN channels are skipped,
// so those joints hold their last target.
func (a *Arm) WriteAngles(ctx context.Context, angles vec.Vec6) error {
	raw := make(feetech.PositionMap, len(angles))
	for i, name := range AllJoints() {
		jc, ok := a.calibration[name]
		if !ok || math.IsNaN(angles[i]) || math.IsInf(angles[i], 0) {
			continue
		}
		raw[a.ids[i]] = jc.Raw(angles[i])
	}
	if len(raw) == 0 {
		return nil
	}

	if err := a.group.SetPositions(ctx, raw); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}
