// Package control runs the fixed-rate control loop around a pick sequencer.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gwillem/pickarm/pkg/pick"
	"github.com/gwillem/pickarm/pkg/vec"
)

// Command is the operator switch position. It is held and re-applied every
// tick until changed.
type Command int

const (
	CommandNone Command = iota
	CommandUp
	CommandDown
	// CommandReset aborts the maneuver once and then reverts to CommandNone.
	CommandReset
	// CommandDisable drops the target and torque until another command is set.
	CommandDisable
)

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandUp:
		return "up"
	case CommandDown:
		return "down"
	case CommandReset:
		return "reset"
	case CommandDisable:
		return "disable"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand converts a command name into a Command.
func ParseCommand(s string) (Command, error) {
	for c := CommandNone; c <= CommandDisable; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return CommandNone, fmt.Errorf("unknown command %q", s)
}

// ErrIncompleteFeedback is reported for ticks where a joint angle could not
// be read.
var ErrIncompleteFeedback = errors.New("incomplete joint feedback")

// Feedback reads the measured joint angles.
type Feedback interface {
	ReadAngles(ctx context.Context) (vec.Vec6, error)
}

// Actuator commands joint angles.
type Actuator interface {
	WriteAngles(ctx context.Context, angles vec.Vec6) error
}

// Publisher forwards every tick's target, including the NaN sentinel.
type Publisher interface {
	Encode(targets vec.Vec6) error
}

// torquer is implemented by actuators that can switch servo torque.
type torquer interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// State is a snapshot of one control tick.
type State struct {
	Tick         uint64
	Command      Command
	Phase        pick.State
	Direction    pick.Direction
	Feedback     vec.Vec6
	Target       vec.Vec6
	NeutralStep  int
	LiftStep     int
	LiftComplete bool
	Rejections   int
	Stale        bool
	Timestamp    time.Time
	Error        error
}

// Config holds configuration for the controller.
type Config struct {
	Sequencer *pick.Sequencer
	Feedback  Feedback
	Actuator  Actuator  // optional
	Publisher Publisher // optional
	Hz        int
	// StaleAfter expires Up and Down commands that were not refreshed in
	// time. Zero disables the watchdog.
	StaleAfter time.Duration
	Logger     *slog.Logger
}

// Controller manages the control loop.
type Controller struct {
	seq        *pick.Sequencer
	feedback   Feedback
	actuator   Actuator
	publisher  Publisher
	hz         int
	staleAfter time.Duration
	logger     *slog.Logger
	runID      string
	maneuver   string
	now        func() time.Time

	mu        sync.RWMutex
	command   Command
	commandAt time.Time
	running   bool

	// tickMu guards the sequencer and the per-tick counters below.
	tickMu     sync.Mutex
	tick       uint64
	rejections int
	torqueOff  bool

	stateCh    chan State
	logCh      chan string
}

// NewController creates a new controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Sequencer == nil {
		return nil, errors.New("controller needs a sequencer")
	}
	if cfg.Feedback == nil {
		return nil, errors.New("controller needs joint feedback")
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	runID := uuid.NewString()
	maneuver := cfg.Sequencer.Config().Name
	return &Controller{
		seq:        cfg.Sequencer,
		feedback:   cfg.Feedback,
		actuator:   cfg.Actuator,
		publisher:  cfg.Publisher,
		hz:         cfg.Hz,
		staleAfter: cfg.StaleAfter,
		logger:     cfg.Logger.With("run_id", runID, "maneuver", maneuver),
		runID:      runID,
		maneuver:   sanitizeManeuver(maneuver),
		now:        time.Now,
		stateCh:    make(chan State, 1),
		logCh:      make(chan string, 10),
	}, nil
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.hz
}

// RunID identifies this controller in logs.
func (c *Controller) RunID() string {
	return c.runID
}

// SetCommand sets the held operator command.
func (c *Controller) SetCommand(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cmd != c.command {
		c.logger.Debug("command changed", "from", c.command, "to", cmd)
	}
	c.command = cmd
	c.commandAt = c.now()
}

// Command returns the held operator command.
func (c *Controller) Command() Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.command
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Info(msg)
	select {
	case c.logCh <- fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), msg):
	default:
		// Drop if channel full
	}
}

// Start runs the control loop until ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	if t, ok := c.actuator.(torquer); ok {
		if err := t.Enable(ctx); err != nil {
			c.log("Warning: failed to enable torque: %v", err)
		} else {
			c.log("Arm: torque enabled")
		}
	}

	c.log("Control started at %d Hz (maneuver %s)", c.hz, c.maneuver)

	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case <-ticker.C:
			c.sendState(c.Tick(ctx))
		}
	}
}

// takeCommand returns the command to apply this tick and whether it expired.
// A reset is consumed.
func (c *Controller) takeCommand() (Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd := c.command
	if cmd == CommandReset {
		c.command = CommandNone
		return cmd, false
	}
	stale := c.staleAfter > 0 &&
		(cmd == CommandUp || cmd == CommandDown) &&
		c.now().Sub(c.commandAt) > c.staleAfter
	return cmd, stale
}

// Tick runs one control cycle: read feedback, feed it to the sequencer,
// apply at most one event, then write and publish the target.
//
// Start calls Tick on every ticker period. Callers driving the loop
// themselves, such as a headless simulation, call it directly instead of
// Start. Concurrent calls are serialized.
func (c *Controller) Tick(ctx context.Context) State {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	start := c.now()
	defer func() {
		tickDuration.WithLabelValues(c.maneuver).Observe(c.now().Sub(start).Seconds())
	}()

	c.tick++
	ticksTotal.WithLabelValues(c.maneuver).Inc()
	cmd, stale := c.takeCommand()
	st := State{Tick: c.tick, Command: cmd, Stale: stale, Timestamp: start}

	angles, err := c.feedback.ReadAngles(ctx)
	if err == nil && !angles.Finite() {
		err = fmt.Errorf("read %v: %w", angles, ErrIncompleteFeedback)
	}
	st.Feedback = angles
	if err != nil {
		c.log("Read error: %v", err)
		st.Error = err
	} else {
		c.seq.SetFeedback(angles)
	}
	target := c.seq.Result()
	// Without feedback only commands that stop the maneuver take effect.
	emit := err == nil

	switch {
	case cmd == CommandDisable || stale:
		if stale {
			staleTicksTotal.WithLabelValues(c.maneuver).Inc()
		}
		c.seq.Reset()
		c.setTorque(ctx, false)
		target = vec.NaN()
		emit = true
	case cmd == CommandReset:
		c.seq.Reset()
		c.log("Maneuver reset")
	case err != nil:
	case cmd == CommandUp || cmd == CommandDown:
		c.setTorque(ctx, true)
		ev := pick.EventUp
		if cmd == CommandDown {
			ev = pick.EventDown
		}
		from := c.seq.State()
		eventsTotal.WithLabelValues(c.maneuver, ev.String()).Inc()
		if c.seq.ProcessEvent(ev) {
			to := c.seq.State()
			transitionsTotal.WithLabelValues(c.maneuver, from.String(), to.String()).Inc()
			c.log("Phase %s -> %s", from, to)
		}
		target = c.seq.Result()
	}

	if n := c.seq.Rejections(); n > c.rejections {
		rejectionsTotal.WithLabelValues(c.maneuver).Add(float64(n - c.rejections))
		c.rejections = n
	}

	if emit {
		c.output(ctx, target, &st)
	}

	st.Target = target
	c.snapshot(&st)
	return st
}

// output writes target to the arm and publishes it. A NaN target is
// published but never written.
func (c *Controller) output(ctx context.Context, target vec.Vec6, st *State) {
	if c.actuator != nil && !target.HasNaN() {
		if err := c.actuator.WriteAngles(ctx, target); err != nil {
			c.log("Write error: %v", err)
			st.Error = err
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Encode(target); err != nil {
			c.log("Publish error: %v", err)
			st.Error = err
		}
	}
}

func (c *Controller) snapshot(st *State) {
	st.Phase = c.seq.State()
	st.Direction = c.seq.Direction()
	st.NeutralStep = c.seq.NeutralStep()
	st.LiftStep = c.seq.LiftStep()
	st.LiftComplete = c.seq.LiftComplete()
	st.Rejections = c.seq.Rejections()
}

// setTorque switches actuator torque on state changes only.
func (c *Controller) setTorque(ctx context.Context, on bool) {
	t, ok := c.actuator.(torquer)
	if !ok || c.torqueOff == !on {
		return
	}
	c.torqueOff = !on
	if on {
		if err := t.Enable(ctx); err != nil {
			c.log("Warning: failed to enable torque: %v", err)
			return
		}
		c.log("Arm: torque enabled")
		return
	}
	if err := t.Disable(ctx); err != nil {
		c.log("Warning: failed to disable torque: %v", err)
		return
	}
	c.log("Arm: torque disabled")
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if t, ok := c.actuator.(torquer); ok {
		if err := t.Disable(context.Background()); err != nil {
			c.log("Warning: failed to disable torque: %v", err)
		} else {
			c.log("Arm: torque disabled")
		}
	}
	c.log("Control stopped")
}
