package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gwillem/pickarm/pkg/control"
	"github.com/gwillem/pickarm/pkg/link"
	"github.com/gwillem/pickarm/pkg/robot"
)

// LoopOptions are shared by the commands that run the control loop.
type LoopOptions struct {
	Hz          int    `long:"hz" description:"Control loop frequency (default from config, else 100)"`
	MetricsAddr string `long:"metrics-addr" description:"Serve Prometheus metrics on this address, e.g. :9100"`
	LogFile     string `long:"log-file" description:"Write structured logs to this file"`
}

func (o LoopOptions) hz(cfg *robot.Config) int {
	if o.Hz > 0 {
		return o.Hz
	}
	return cfg.Hz
}

// logger opens the log file, or falls back to w.
func (o LoopOptions) logger(w io.Writer) (*slog.Logger, func(), error) {
	if o.LogFile == "" {
		return newLogger(w), func() {}, nil
	}
	f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f), func() { f.Close() }, nil
}

type RunCommand struct {
	ManeuverOptions
	LoopOptions
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'pickarm scan' first.")
		os.Exit(1)
	}
	if cfg.Arm.Port == "" {
		fmt.Fprintln(os.Stderr, "Arm not configured. Run 'pickarm scan' first.")
		os.Exit(1)
	}

	logger, closeLog, err := c.logger(nil)
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

	fmt.Printf("Loaded configuration from %s\n", opts.Config)

	arm, err := robot.NewArm(cfg.Arm.Port, cfg.Arm.Calibration)
	if err != nil {
		return fmt.Errorf("connect arm: %w", err)
	}
	defer arm.Close()

	ctrlCfg := control.Config{
		Sequencer:  seq,
		Feedback:   arm,
		Actuator:   arm,
		Hz:         c.hz(cfg),
		StaleAfter: cfg.StaleAfter(),
		Logger:     logger,
	}
	if cfg.Link.Port != "" {
		out, err := link.Open(cfg.Link.Port, cfg.Link.Baud)
		if err != nil {
			return err
		}
		defer out.Close()
		ctrlCfg.Publisher = link.NewEncoder(out)
	}

	ctrl, err := control.NewController(ctrlCfg)
	if err != nil {
		return err
	}

	return runTUI(ctrl, "pickarm run: "+maneuver.Name, c.MetricsAddr, logger)
}

// runTUI runs the controller in the background behind the terminal view.
func runTUI(ctrl *control.Controller, title, metricsAddr string, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveMetrics(ctx, metricsAddr, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Controller error: %v", err)
		}
	}()

	p := tea.NewProgram(initialControlModel(ctrl, title), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	// Let the controller drop torque before the bus closes
	cancel()
	<-done
	return nil
}

// serveMetrics exposes the Prometheus registry until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
}
