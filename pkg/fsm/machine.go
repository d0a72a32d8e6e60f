package fsm

import (
	"fmt"
	"log/slog"
)

// Machine is a table-driven state machine over state ids S, events E and a
// context value of type C shared by every hook, guard and action.
type Machine[S, E comparable, C any] struct {
	states      map[S]*state[C]
	transitions map[key[S, E]]*transition[S, E, C]

	current S
	started bool
	ctx     C

	logger              *slog.Logger
	stateChangeCallback func(from, to S)
}

// machineConfig collects MachineOption values.
type machineConfig struct {
	logger *slog.Logger
}

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*machineConfig)

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) MachineOption {
	return func(c *machineConfig) {
		c.logger = logger
	}
}

// New creates an empty machine owning ctx.
func New[S, E comparable, C any](ctx C, opts ...MachineOption) *Machine[S, E, C] {
	cfg := machineConfig{logger: Logger}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Machine[S, E, C]{
		states:      make(map[S]*state[C]),
		transitions: make(map[key[S, E]]*transition[S, E, C]),
		ctx:         ctx,
		logger:      cfg.logger,
	}
}

// OnStateChange sets a callback invoked after each fired transition.
func (m *Machine[S, E, C]) OnStateChange(fn func(from, to S)) {
	m.stateChangeCallback = fn
}

// RegisterState adds a state. Registering an id again replaces its hooks.
func (m *Machine[S, E, C]) RegisterState(id S, opts ...StateOption[C]) {
	s := &state[C]{}
	for _, opt := range opts {
		opt(s)
	}
	m.states[id] = s
}

// AddTransition installs the entry for (from, event). A nil guard is always
// ready; a nil action does nothing. Both states must be registered and the
// pair must not already have an entry.
func (m *Machine[S, E, C]) AddTransition(from S, event E, guard Guard[E, C], action Action[E, C], to S) error {
	if _, ok := m.states[from]; !ok {
		return fmt.Errorf("transition from %v: %w", from, ErrUnknownState)
	}
	if _, ok := m.states[to]; !ok {
		return fmt.Errorf("transition to %v: %w", to, ErrUnknownState)
	}
	k := key[S, E]{from: from, event: event}
	if _, ok := m.transitions[k]; ok {
		return fmt.Errorf("transition %v on %v: %w", from, event, ErrDuplicateTransition)
	}
	m.transitions[k] = &transition[S, E, C]{to: to, guard: guard, action: action}
	return nil
}

// Start places the machine in initial without running its enter hook.
// Calling Start again re-places the machine.
func (m *Machine[S, E, C]) Start(initial S) error {
	if _, ok := m.states[initial]; !ok {
		return fmt.Errorf("start in %v: %w", initial, ErrUnknownState)
	}
	m.current = initial
	m.started = true
	m.logger.Debug("machine placed", "state", initial)
	return nil
}

// ProcessEvent evaluates the transition registered for the current state
// and event, and reports whether it fired. Events without an entry, and
// events received before Start, are ignored.
func (m *Machine[S, E, C]) ProcessEvent(event E) bool {
	if !m.started {
		m.logger.Debug("event before start", "event", event)
		return false
	}

	t, ok := m.transitions[key[S, E]{from: m.current, event: event}]
	if !ok {
		m.logger.Debug("no transition found", "event", event, "state", m.current)
		return false
	}

	if t.guard != nil && t.guard(event, m.ctx) != Ready {
		m.logger.Debug("guard holding", "event", event, "state", m.current)
		return false
	}

	m.executeTransition(t, event)
	return true
}

// executeTransition runs exit, action and enter in that order.
func (m *Machine[S, E, C]) executeTransition(t *transition[S, E, C], event E) {
	from := m.current
	m.logger.Debug("executing transition", "from", from, "to", t.to, "event", event)

	if s := m.states[from]; s.onExit != nil {
		s.onExit(&m.ctx)
	}
	if t.action != nil {
		t.action(event, &m.ctx)
	}
	m.current = t.to
	if s := m.states[t.to]; s.onEnter != nil {
		s.onEnter(&m.ctx)
	}

	if m.stateChangeCallback != nil {
		m.stateChangeCallback(from, t.to)
	}
}

// CurrentState returns the active state.
func (m *Machine[S, E, C]) CurrentState() S {
	return m.current
}

// Started reports whether Start has been called.
func (m *Machine[S, E, C]) Started() bool {
	return m.started
}

// Context returns the machine's context value.
func (m *Machine[S, E, C]) Context() *C {
	return &m.ctx
}
