package robot

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestJointCalibration_Radians(t *testing.T) {
	cal := JointCalibration{
		HomingOffset: 100,
		RangeMin:     500,
		RangeMax:     3500,
	}

	tests := []struct {
		raw      int
		expected float64
	}{
		{2148, 0},            // homed center -> 0
		{3172, math.Pi / 2},  // quarter turn
		{1124, -math.Pi / 2}, // quarter turn back
		{2148 + 512, math.Pi / 4},
	}

	for _, tt := range tests {
		got := cal.Radians(tt.raw)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("Radians(%d) = %f, want %f", tt.raw, got, tt.expected)
		}
	}
}

func TestJointCalibration_Raw(t *testing.T) {
	cal := JointCalibration{
		RangeMin: 1000,
		RangeMax: 3000,
	}

	tests := []struct {
		rad      float64
		expected int
	}{
		{0, 2048},
		{math.Pi / 4, 2560},
		{-math.Pi / 4, 1536},
		{math.Pi, 3000},  // clamped to max
		{-math.Pi, 1000}, // clamped to min
	}

	for _, tt := range tests {
		got := cal.Raw(tt.rad)
		if got != tt.expected {
			t.Errorf("Raw(%f) = %d, want %d", tt.rad, got, tt.expected)
		}
	}
}

func TestJointCalibration_DriveMode(t *testing.T) {
	cal := JointCalibration{DriveMode: 1}

	if got := cal.Raw(math.Pi / 2); got != 1024 {
		t.Errorf("inverted Raw(pi/2) = %d, want 1024", got)
	}
	if got := cal.Radians(1024); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("inverted Radians(1024) = %f, want %f", got, math.Pi/2)
	}
}

func TestJointCalibration_RoundTrip(t *testing.T) {
	cal := JointCalibration{
		HomingOffset: -37,
		RangeMin:     823,
		RangeMax:     3540,
	}

	// Test round-trip: raw -> radians -> raw
	for raw := cal.RangeMin; raw <= cal.RangeMax; raw += 100 {
		rad := cal.Radians(raw)
		back := cal.Raw(rad)
		if back != raw {
			t.Errorf("Round-trip failed: %d -> %f -> %d", raw, rad, back)
		}
	}
}

func TestCalibration_IDs(t *testing.T) {
	ids := DefaultCalibration().IDs()
	expected := []int{1, 2, 3, 4, 5, 6}

	if len(ids) != len(expected) {
		t.Fatalf("IDs returned %d IDs, want %d", len(ids), len(expected))
	}

	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("IDs()[%d] = %d, want %d", i, id, expected[i])
		}
	}
}

func TestCalibration_ByID(t *testing.T) {
	cal := Calibration{
		BaseYaw:   JointCalibration{ID: 1, RangeMin: 100, RangeMax: 200},
		WristRoll: JointCalibration{ID: 6, RangeMin: 300, RangeMax: 400},
	}

	// Test finding existing ID
	name, jc, ok := cal.ByID(1)
	if !ok {
		t.Fatal("ByID(1) returned false")
	}
	if name != BaseYaw {
		t.Errorf("ByID(1) returned name %s, want base_yaw", name)
	}
	if jc.RangeMin != 100 {
		t.Errorf("ByID(1) returned wrong calibration: %+v", jc)
	}

	// Test non-existing ID
	_, _, ok = cal.ByID(99)
	if ok {
		t.Error("ByID(99) should return false")
	}
}

func TestLoadCalibration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	data := `{"base_yaw": {"id": 1, "drive_mode": 1, "homing_offset": 12, "range_min": 0, "range_max": 4095}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cal, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("LoadCalibration: %v", err)
	}
	jc, ok := cal[BaseYaw]
	if !ok || jc.DriveMode != 1 || jc.HomingOffset != 12 {
		t.Errorf("LoadCalibration returned %+v", cal)
	}

	if _, err := LoadCalibration(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadCalibration of a missing file should fail")
	}
}
