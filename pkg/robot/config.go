package robot

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gwillem/pickarm/pkg/kinematics"
)

const DefaultConfigFile = "pickarm.json"

// Config holds the arm configuration
type Config struct {
	Arm          ArmConfig            `json:"arm"`
	Hz           int                  `json:"hz,omitempty"`
	Maneuver     string               `json:"maneuver,omitempty"`
	ManeuverFile string               `json:"maneuver_file,omitempty"`
	Link         LinkConfig           `json:"link,omitempty"`
	Geometry     *kinematics.Geometry `json:"geometry,omitempty"`
	StaleAfterMs int                  `json:"stale_after_ms,omitempty"`
}

// ArmConfig holds configuration for the servo bus
type ArmConfig struct {
	Port        string      `json:"port"`
	Calibration Calibration `json:"calibration,omitempty"`
}

// LinkConfig holds configuration for the target output link. An empty port
// disables it.
type LinkConfig struct {
	Port string `json:"port,omitempty"`
	Baud int    `json:"baud,omitempty"`
}

// IsCalibrated returns true if the arm has calibration data
func (a *ArmConfig) IsCalibrated() bool {
	return len(a.Calibration) > 0
}

// StaleAfter returns the command watchdog timeout, zero when disabled.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMs) * time.Millisecond
}

// KinematicGeometry returns the configured link lengths or the defaults.
func (c *Config) KinematicGeometry() kinematics.Geometry {
	if c.Geometry != nil {
		return *c.Geometry
	}
	return kinematics.DefaultGeometry()
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
