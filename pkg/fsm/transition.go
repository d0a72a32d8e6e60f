package fsm

// Guard decides whether a transition fires. It receives a copy of the
// context, so it can read but not change it; only actions and hooks
// mutate the context. Changes to state the guard has captured persist
// whatever it returns.
type Guard[E, C any] func(event E, ctx C) Readiness

// Action runs when a transition fires, after the exit hook of the source
// state and before the enter hook of the destination.
type Action[E, C any] func(event E, ctx *C)

// transition is one table entry.
type transition[S, E, C any] struct {
	to     S
	guard  Guard[E, C]
	action Action[E, C]
}

// key identifies a table entry.
type key[S, E comparable] struct {
	from  S
	event E
}
