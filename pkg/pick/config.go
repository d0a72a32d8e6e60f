package pick

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"

	"github.com/gwillem/pickarm/pkg/kinematics"
	"github.com/gwillem/pickarm/pkg/vec"
)

// ErrInvalidConfig is returned for configurations the sequencer cannot run.
var ErrInvalidConfig = errors.New("invalid maneuver config")

// Pin holds one joint at a fixed angle while lifting.
type Pin struct {
	Joint int     `json:"joint" yaml:"joint"` // 1-based
	Value float64 `json:"value" yaml:"value"`
}

// Config parameterises one two-phase pick maneuver.
type Config struct {
	Name string `json:"name" yaml:"name"`

	// Neutral pose the arm returns to before lifting and after lowering.
	NeutralJoints vec.Vec6 `json:"neutral_joints" yaml:"neutral_joints"`
	NeutralSteps  int      `json:"neutral_steps" yaml:"neutral_steps"`
	ReturnSteps   int      `json:"return_steps" yaml:"return_steps"`

	LiftStart   vec.Pose      `json:"lift_start" yaml:"lift_start"`
	LiftEnd     vec.Pose      `json:"lift_end" yaml:"lift_end"`
	LiftControl *[2]r3.Vector `json:"lift_control,omitempty" yaml:"lift_control,omitempty"`
	LiftSteps   int           `json:"lift_steps" yaml:"lift_steps"`

	WristPins []Pin              `json:"wrist_pins" yaml:"wrist_pins"`
	Limits    *kinematics.Limits `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// Validate checks step budgets and pin indices.
func (c Config) Validate() error {
	for name, steps := range map[string]int{
		"neutral_steps": c.NeutralSteps,
		"return_steps":  c.ReturnSteps,
		"lift_steps":    c.LiftSteps,
	} {
		if steps < 2 {
			return fmt.Errorf("%s %s = %d, need at least 2: %w", c.Name, name, steps, ErrInvalidConfig)
		}
	}
	for _, p := range c.WristPins {
		if p.Joint < 1 || p.Joint > len(vec.Vec6{}) {
			return fmt.Errorf("%s pin on joint %d: %w", c.Name, p.Joint, ErrInvalidConfig)
		}
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	if c.LiftControl != nil {
		ctrl := *c.LiftControl
		out.LiftControl = &ctrl
	}
	if c.Limits != nil {
		lim := *c.Limits
		out.Limits = &lim
	}
	out.WristPins = append([]Pin(nil), c.WristPins...)
	return out
}

// The lift approaches from above with the wrist rolled half a turn.
var (
	liftOrientation = [3]float64{-math.Pi, vec.Deg(-90), -math.Pi}
	neutralJoints   = vec.Vec6{0, -0.672690, -0.023241, math.Pi, 0.713385, 0}
)

// GoldMid is the maneuver for the middle gold mine slot.
func GoldMid() Config {
	return Config{
		Name:          "gold_mid",
		NeutralJoints: neutralJoints,
		NeutralSteps:  1000,
		ReturnSteps:   500,
		LiftStart:     vec.NewPose([3]float64{0.52, 0, 0.1}, liftOrientation),
		LiftEnd:       vec.NewPose([3]float64{0.52, 0, 0.32}, liftOrientation),
		LiftSteps:     500,
		WristPins:     []Pin{{Joint: 4, Value: math.Pi}, {Joint: 6, Value: 0}},
	}
}

// Silver is the maneuver for the silver mine.
func Silver() Config {
	c := GoldMid()
	c.Name = "silver"
	return c
}

// Presets returns the built-in maneuvers by name.
func Presets() map[string]Config {
	return map[string]Config{
		"gold_mid": GoldMid(),
		"silver":   Silver(),
	}
}

// maneuverFile is the top-level layout of a maneuver YAML file.
type maneuverFile struct {
	Maneuvers []yaml.Node `yaml:"maneuvers"`
}

// LoadConfigs reads maneuvers from a YAML file. See ParseConfigs.
func LoadConfigs(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read maneuver file: %w", err)
	}
	return ParseConfigs(data)
}

// ParseConfigs decodes maneuvers from YAML. Each entry starts from the
// maneuver named by its base key (a preset or an earlier entry, gold_mid by
// default) and overrides the fields it sets. The result includes the
// presets.
func ParseConfigs(data []byte) (map[string]Config, error) {
	var file maneuverFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse maneuver YAML: %w", err)
	}

	configs := Presets()
	for i := range file.Maneuvers {
		node := &file.Maneuvers[i]

		var header struct {
			Name string `yaml:"name"`
			Base string `yaml:"base"`
		}
		if err := node.Decode(&header); err != nil {
			return nil, fmt.Errorf("maneuver %d: %w", i, err)
		}
		if header.Name == "" {
			return nil, fmt.Errorf("maneuver %d has no name: %w", i, ErrInvalidConfig)
		}
		if header.Base == "" {
			header.Base = "gold_mid"
		}
		base, ok := configs[header.Base]
		if !ok {
			return nil, fmt.Errorf("maneuver %s: unknown base %q: %w", header.Name, header.Base, ErrInvalidConfig)
		}

		cfg := base.clone()
		if err := node.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("maneuver %s: %w", header.Name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		configs[cfg.Name] = cfg
	}
	return configs, nil
}

// Names returns the sorted maneuver names of configs.
func Names(configs map[string]Config) []string {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
