// Package pick sequences the two-phase pick maneuver of the arm: return to a
// neutral joint pose, then lift along a cartesian path, and back.
//
// A Sequencer is ticked once per control cycle. The caller feeds the
// current joint angles with SetFeedback, processes at most one operator
// event, and reads the joint target with Result. Motions only progress
// while the operator keeps sending the matching event, so releasing the
// command freezes the arm in place and reversing it re-plans from the
// current joint angles.
package pick

import (
	"fmt"
	"log/slog"

	"github.com/gwillem/pickarm/pkg/fsm"
	"github.com/gwillem/pickarm/pkg/trajectory"
	"github.com/gwillem/pickarm/pkg/vec"
)

// State is a phase of the maneuver.
type State int

const (
	// StateSetInitial is the stowed phase around the neutral pose.
	StateSetInitial State = iota
	// StateLift is the raised phase along the lift path.
	StateLift
)

func (s State) String() string {
	switch s {
	case StateSetInitial:
		return "set_initial"
	case StateLift:
		return "lift"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is an operator request.
type Event int

const (
	EventUp Event = iota
	EventDown
)

func (e Event) String() string {
	switch e {
	case EventUp:
		return "up"
	case EventDown:
		return "down"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Direction records the last requested direction.
type Direction int

const (
	DirectionInitial Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "initial"
	}
}

// Context is the machine context. The maneuver keeps its data on the
// Sequencer, so it carries nothing.
type Context struct{}

// Solver maps a cartesian pose sample to joint angles.
type Solver interface {
	Inverse(pose vec.Vec6) (vec.Vec6, error)
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// WithStateChangeCallback sets a callback invoked after each transition.
func WithStateChangeCallback(fn func(from, to State)) Option {
	return func(s *Sequencer) {
		s.onChange = fn
	}
}

// Sequencer drives one pick maneuver.
type Sequencer struct {
	cfg    Config
	solver Solver

	machine *fsm.Machine[State, Event, Context]
	neutral *trajectory.Joint
	lift    trajectory.Trajectory

	feedback   vec.Vec6
	result     vec.Vec6
	direction  Direction
	rejections int

	logger   *slog.Logger
	onChange func(from, to State)
}

// New builds a sequencer for cfg that solves lift poses with solver.
func New(cfg Config, solver Solver, opts ...Option) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if solver == nil {
		return nil, fmt.Errorf("%s: no kinematics solver: %w", cfg.Name, ErrInvalidConfig)
	}

	s := &Sequencer{
		cfg:    cfg.clone(),
		solver: solver,
		result: vec.NaN(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("maneuver", cfg.Name)

	s.neutral = trajectory.NewJoint().
		SetEnd(cfg.NeutralJoints).
		SetTotalSteps(cfg.NeutralSteps)
	s.lift = newLift(cfg)

	if err := s.wire(); err != nil {
		return nil, fmt.Errorf("wire %s: %w", cfg.Name, err)
	}
	return s, nil
}

// newLift builds a Bezier lift when control points are configured and a
// straight one otherwise.
func newLift(cfg Config) trajectory.Trajectory {
	if cfg.LiftControl != nil {
		return trajectory.NewBezier().
			SetStart(cfg.LiftStart).
			SetEnd(cfg.LiftEnd).
			SetControlPoints(cfg.LiftControl[0], cfg.LiftControl[1]).
			SetTotalSteps(cfg.LiftSteps)
	}
	return trajectory.NewLine().
		SetStart(cfg.LiftStart).
		SetEnd(cfg.LiftEnd).
		SetTotalSteps(cfg.LiftSteps)
}

func (s *Sequencer) wire() error {
	s.machine = fsm.New[State, Event](Context{}, fsm.WithLogger(s.logger))
	s.machine.RegisterState(StateSetInitial)
	s.machine.RegisterState(StateLift)
	s.machine.OnStateChange(func(from, to State) {
		s.logger.Info("maneuver phase changed", "from", from, "to", to)
		if s.onChange != nil {
			s.onChange(from, to)
		}
	})

	if err := s.machine.AddTransition(StateSetInitial, EventUp, s.awaitNeutral, nil, StateLift); err != nil {
		return err
	}
	if err := s.machine.AddTransition(StateLift, EventUp, s.advanceLift, nil, StateLift); err != nil {
		return err
	}
	if err := s.machine.AddTransition(StateLift, EventDown, s.awaitReturn, nil, StateSetInitial); err != nil {
		return err
	}
	return s.machine.Start(StateSetInitial)
}

// awaitNeutral moves toward the neutral pose one step per Up and lets the
// machine into the lift phase once the arm is there. The start point is
// re-seeded from feedback each time so an interrupted move resumes from
// where the arm actually is.
func (s *Sequencer) awaitNeutral(Event, Context) fsm.Readiness {
	if s.neutral.Complete() {
		return fsm.Ready
	}
	s.neutral.SetTotalSteps(s.cfg.NeutralSteps).SetStart(s.feedback)
	s.result = s.neutral.Next()
	return fsm.Advance
}

// advanceLift moves one step along the lift path. It never leaves the lift
// phase.
func (s *Sequencer) advanceLift(Event, Context) fsm.Readiness {
	pose := s.lift.Next()
	s.neutral.Reset()

	joints, err := s.solve(pose)
	if err != nil {
		s.rejections++
		s.logger.Warn("holding last target", "step", s.lift.Step(), "error", err)
		return fsm.Advance
	}
	s.result = joints
	return fsm.Advance
}

// awaitReturn lowers the arm back to neutral once the lift has finished,
// and lets the machine back into the stowed phase when the return
// completes. Both trajectories are then rewound for the next cycle.
func (s *Sequencer) awaitReturn(Event, Context) fsm.Readiness {
	if !s.lift.Complete() {
		return fsm.Advance
	}
	s.neutral.SetTotalSteps(s.cfg.ReturnSteps).SetStart(s.feedback)
	s.result = s.neutral.Next()
	if !s.neutral.Complete() {
		return fsm.Advance
	}
	s.neutral.Reset()
	s.lift.Reset()
	return fsm.Ready
}

// solve runs inverse kinematics, applies the wrist pins and checks limits.
func (s *Sequencer) solve(pose vec.Vec6) (vec.Vec6, error) {
	joints, err := s.solver.Inverse(pose)
	if err != nil {
		return vec.Vec6{}, fmt.Errorf("inverse kinematics: %w", err)
	}
	for _, p := range s.cfg.WristPins {
		joints[p.Joint-1] = p.Value
	}
	if !joints.Finite() {
		return vec.Vec6{}, fmt.Errorf("solver returned %v", joints)
	}
	if s.cfg.Limits != nil {
		if err := s.cfg.Limits.Check(joints); err != nil {
			return vec.Vec6{}, err
		}
	}
	return joints, nil
}

// SetFeedback stores the current joint angles. Call it before
// ProcessEvent on every tick.
func (s *Sequencer) SetFeedback(joints vec.Vec6) {
	s.feedback = joints
}

// ProcessEvent feeds one operator event and reports whether it changed the
// phase.
func (s *Sequencer) ProcessEvent(e Event) bool {
	switch e {
	case EventUp:
		s.direction = DirectionUp
	case EventDown:
		s.direction = DirectionDown
	}
	return s.machine.ProcessEvent(e)
}

// Result returns the most recent joint target, or the NaN sentinel if none
// has been computed yet.
func (s *Sequencer) Result() vec.Vec6 {
	return s.result
}

// State returns the current phase.
func (s *Sequencer) State() State {
	return s.machine.CurrentState()
}

// Direction returns the last requested direction.
func (s *Sequencer) Direction() Direction {
	return s.direction
}

// Reset aborts the cycle: back to the stowed phase with both trajectories
// rewound and the direction cleared. The last target is kept.
func (s *Sequencer) Reset() {
	// Start only fails for unregistered states.
	_ = s.machine.Start(StateSetInitial)
	s.direction = DirectionInitial
	s.neutral.Reset()
	s.lift.Reset()
	s.logger.Debug("maneuver reset")
}

// Config returns the maneuver configuration.
func (s *Sequencer) Config() Config {
	return s.cfg.clone()
}

// NeutralComplete reports whether the return-to-neutral motion finished.
func (s *Sequencer) NeutralComplete() bool { return s.neutral.Complete() }

// ResetNeutral rewinds the return-to-neutral motion.
func (s *Sequencer) ResetNeutral() { s.neutral.Reset() }

// NeutralStep returns the step counter of the return-to-neutral motion.
func (s *Sequencer) NeutralStep() int { return s.neutral.Step() }

// LiftComplete reports whether the lift motion finished.
func (s *Sequencer) LiftComplete() bool { return s.lift.Complete() }

// LiftStep returns the step counter of the lift motion.
func (s *Sequencer) LiftStep() int { return s.lift.Step() }

// Rejections counts lift samples whose joint solution was discarded.
func (s *Sequencer) Rejections() int { return s.rejections }
