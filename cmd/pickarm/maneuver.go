package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gwillem/pickarm/pkg/kinematics"
	"github.com/gwillem/pickarm/pkg/pick"
	"github.com/gwillem/pickarm/pkg/robot"
)

// ManeuverOptions selects the maneuver to run. Flags override the
// configuration file.
type ManeuverOptions struct {
	Maneuver     string `short:"m" long:"maneuver" description:"Maneuver name (default gold_mid)"`
	ManeuverFile string `long:"maneuver-file" description:"YAML file with additional maneuvers"`
}

// loadConfig reads the configuration file. A missing file yields an empty
// configuration when allowMissing is set.
func loadConfig(allowMissing bool) (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err == nil {
		return cfg, nil
	}
	if allowMissing && errors.Is(err, os.ErrNotExist) {
		return &robot.Config{}, nil
	}
	return nil, fmt.Errorf("load %s: %w", opts.Config, err)
}

// maneuvers returns the presets plus the maneuvers from the configured file.
func (o ManeuverOptions) maneuvers(cfg *robot.Config) (map[string]pick.Config, error) {
	file := o.ManeuverFile
	if file == "" {
		file = cfg.ManeuverFile
	}
	if file == "" {
		return pick.Presets(), nil
	}
	return pick.LoadConfigs(file)
}

// selected resolves the maneuver to run.
func (o ManeuverOptions) selected(cfg *robot.Config) (pick.Config, error) {
	all, err := o.maneuvers(cfg)
	if err != nil {
		return pick.Config{}, err
	}
	name := o.Maneuver
	if name == "" {
		name = cfg.Maneuver
	}
	if name == "" {
		name = pick.GoldMid().Name
	}
	m, ok := all[name]
	if !ok {
		return pick.Config{}, fmt.Errorf("unknown maneuver %q (have %v)", name, pick.Names(all))
	}
	return m, nil
}

// newSequencer builds the sequencer for m with the configured arm geometry.
func newSequencer(cfg *robot.Config, m pick.Config, logger *slog.Logger) (*pick.Sequencer, error) {
	solver, err := kinematics.NewArm(cfg.KinematicGeometry())
	if err != nil {
		return nil, err
	}
	return pick.New(m, solver, pick.WithLogger(logger))
}

// newLogger logs to w, or nowhere when w is nil.
func newLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
