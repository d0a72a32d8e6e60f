package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gwillem/pickarm/pkg/control"
	"github.com/gwillem/pickarm/pkg/link"
	"github.com/gwillem/pickarm/pkg/pick"
	"github.com/gwillem/pickarm/pkg/robot"
	"github.com/gwillem/pickarm/pkg/vec"
)

type SimulateCommand struct {
	ManeuverOptions
	LoopOptions

	MaxStep  float64 `long:"max-step" default:"0.05" description:"Largest simulated joint move per tick in radians (0 = instant)"`
	Headless bool    `long:"headless" description:"Print one CSV line per tick instead of the terminal view"`
	Ticks    int     `long:"ticks" default:"2000" description:"Number of ticks to run headless"`
	Command  string  `long:"command" default:"up" choice:"up" choice:"down" choice:"cycle" description:"Command held while headless; cycle lifts then lowers"`
	Frames   string  `long:"frames" description:"Also write the encoded target frames to this file"`
}

func (c *SimulateCommand) Execute(args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	var logSink io.Writer
	if c.Headless {
		logSink = os.Stderr
	}
	logger, closeLog, err := c.logger(logSink)
	if err != nil {
		return err
	}
	defer closeLog()

	maneuver, err := c.selected(cfg)
	if err != nil {
		return err
	}
	seq, err := newSequencer(cfg, maneuver, logger)
	if err != nil {
		return err
	}

	arm := robot.NewSimArm(vec.Vec6{}, c.MaxStep)
	ctrlCfg := control.Config{
		Sequencer:  seq,
		Feedback:   arm,
		Actuator:   arm,
		Hz:         c.hz(cfg),
		StaleAfter: cfg.StaleAfter(),
		Logger:     logger,
	}
	if c.Frames != "" {
		f, err := os.Create(c.Frames)
		if err != nil {
			return fmt.Errorf("create frames file: %w", err)
		}
		defer f.Close()
		ctrlCfg.Publisher = link.NewEncoder(f)
	}

	ctrl, err := control.NewController(ctrlCfg)
	if err != nil {
		return err
	}

	if !c.Headless {
		return runTUI(ctrl, "pickarm simulate: "+maneuver.Name, c.MetricsAddr, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveMetrics(ctx, c.MetricsAddr, logger)

	if err := arm.Enable(ctx); err != nil {
		return err
	}
	return c.runHeadless(ctx, ctrl, os.Stdout)
}

// runHeadless ticks the controller as fast as possible and prints CSV.
func (c *SimulateCommand) runHeadless(ctx context.Context, ctrl *control.Controller, out io.Writer) error {
	w := csv.NewWriter(out)
	header := []string{"tick", "command", "phase", "direction", "neutral_step", "lift_step", "rejections"}
	for _, name := range robot.AllJoints() {
		header = append(header, string(name))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	cmd := control.CommandUp
	if c.Command == "down" {
		cmd = control.CommandDown
	}
	lifted := false

	for i := 0; i < c.Ticks; i++ {
		ctrl.SetCommand(cmd)
		st := ctrl.Tick(ctx)
		if st.Error != nil {
			return st.Error
		}

		row := []string{
			strconv.FormatUint(st.Tick, 10),
			st.Command.String(),
			st.Phase.String(),
			st.Direction.String(),
			strconv.Itoa(st.NeutralStep),
			strconv.Itoa(st.LiftStep),
			strconv.Itoa(st.Rejections),
		}
		for _, v := range st.Target {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}

		if c.Command != "cycle" {
			continue
		}
		// Lift until the top, then lower until stowed again
		if cmd == control.CommandUp && st.Phase == pick.StateLift && st.LiftComplete {
			cmd = control.CommandDown
			lifted = true
		}
		if lifted && st.Phase == pick.StateSetInitial {
			break
		}
	}

	w.Flush()
	return w.Error()
}
