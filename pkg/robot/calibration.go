package robot

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

const (
	// TicksPerTurn is the resolution of the servo position encoder.
	TicksPerTurn = 4096
	// CenterTick is the raw position of a homed servo at zero angle.
	CenterTick = TicksPerTurn / 2
)

// JointCalibration holds calibration data for a single joint servo.
type JointCalibration struct {
	ID           int `json:"id"`
	DriveMode    int `json:"drive_mode"`
	HomingOffset int `json:"homing_offset"`
	RangeMin     int `json:"range_min"`
	RangeMax     int `json:"range_max"`
}

// Calibration holds calibration data for all joints, keyed by joint name.
type Calibration map[JointName]JointCalibration

// LoadCalibration loads calibration data from a JSON file.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration file: %w", err)
	}

	var raw map[string]JointCalibration
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse calibration JSON: %w", err)
	}

	cal := make(Calibration, len(raw))
	for name, jc := range raw {
		cal[JointName(name)] = jc
	}

	return cal, nil
}

// sign is -1 for servos mounted in reverse (drive mode 1).
func (c JointCalibration) sign() float64 {
	if c.DriveMode == 1 {
		return -1
	}
	return 1
}

// Radians converts a raw servo position to a joint angle.
func (c JointCalibration) Radians(raw int) float64 {
	ticks := float64(raw - CenterTick - c.HomingOffset)
	return c.sign() * ticks * 2 * math.Pi / TicksPerTurn
}

// Raw converts a joint angle to a raw servo position, clamped to the
// calibrated range when one is set.
func (c JointCalibration) Raw(rad float64) int {
	ticks := int(math.Round(c.sign() * rad * TicksPerTurn / (2 * math.Pi)))
	raw := CenterTick + c.HomingOffset + ticks
	if c.RangeMax > c.RangeMin {
		raw = max(c.RangeMin, min(c.RangeMax, raw))
	}
	return raw
}

// IDs returns the servo IDs for all joints in the calibration.
func (c Calibration) IDs() []int {
	ids := make([]int, 0, len(c))
	// Use AllJoints() to ensure consistent ordering
	for _, name := range AllJoints() {
		if jc, ok := c[name]; ok {
			ids = append(ids, jc.ID)
		}
	}
	return ids
}

// ByID returns joint name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (JointName, JointCalibration, bool) {
	for name, jc := range c {
		if jc.ID == id {
			return name, jc, true
		}
	}
	return "", JointCalibration{}, false
}

// DefaultCalibration maps servo IDs 1-6 to the joints in order with no
// homing offset and no range limit.
func DefaultCalibration() Calibration {
	cal := make(Calibration, len(AllJoints()))
	for i, name := range AllJoints() {
		cal[name] = JointCalibration{ID: i + 1}
	}
	return cal
}
