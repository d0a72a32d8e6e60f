package fsm

// state holds the hooks registered for one state id.
type state[C any] struct {
	onEnter func(ctx *C)
	onExit  func(ctx *C)
}

// StateOption is a functional option for configuring a state
type StateOption[C any] func(*state[C])

// WithOnEnter sets the hook run when a transition enters the state.
func WithOnEnter[C any](fn func(ctx *C)) StateOption[C] {
	return func(s *state[C]) {
		s.onEnter = fn
	}
}

// WithOnExit sets the hook run when a transition leaves the state.
func WithOnExit[C any](fn func(ctx *C)) StateOption[C] {
	return func(s *state[C]) {
		s.onExit = fn
	}
}
