package statemachine

import "context"

// State is a named lifecycle state.
type State string

// Event triggers a transition between states.
type Event string

// Action executes side effects during a transition. Returning an error prevents the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard decides at runtime whether a transition may proceed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition is a state change triggered by an event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // all must pass
	Actions []Action // executed in order before the new state is returned
}
