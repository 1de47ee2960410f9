package statemachine

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Table is a transition table over persisted states. It holds no current state of its own:
// callers load the state of a record, ask the table for the next one and store the result.
// A Table is safe for concurrent use.
type Table struct {
	initial     State
	transitions map[State]map[Event][]Transition
	mu          sync.RWMutex
}

// New creates a table whose records start in initial.
func New(initial State, opts ...Option) (*Table, error) {
	if initial == "" {
		return nil, ErrInvalidState
	}

	t := &Table{
		initial:     initial,
		transitions: make(map[State]map[Event][]Transition),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is like New but panics on a misconfigured table.
func MustNew(initial State, opts ...Option) *Table {
	t, err := New(initial, opts...)
	if err != nil {
		panic("statemachine: " + err.Error())
	}
	return t
}

// Initial returns the state new records start in.
func (t *Table) Initial() State {
	return t.initial
}

// AddTransition registers a transition. Several transitions may share a from/event pair;
// the first whose guards pass is taken.
func (t *Table) AddTransition(from, to State, event Event, guards []Guard, actions []Action) error {
	if from == "" || to == "" || event == "" {
		return ErrInvalidTransition
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.transitions[from]; !ok {
		t.transitions[from] = make(map[Event][]Transition)
	}
	t.transitions[from][event] = append(t.transitions[from][event], Transition{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
	return nil
}

// Next runs event against a record in state from and returns the state it moves to.
// Guards are evaluated first, then the actions of the selected transition; an action
// failure is returned wrapped with ErrActionFailed and the record must keep its state.
func (t *Table) Next(ctx context.Context, from State, event Event, data any) (State, error) {
	if event == "" {
		return from, ErrInvalidEvent
	}

	tr, err := t.lookup(ctx, from, event, data)
	if err != nil {
		return from, err
	}

	for _, action := range tr.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, from, tr.To, event, data); err != nil {
			return from, errors.Join(ErrActionFailed, err)
		}
	}
	return tr.To, nil
}

// CanFire reports whether event would move a record out of from.
func (t *Table) CanFire(ctx context.Context, from State, event Event, data any) bool {
	if event == "" {
		return false
	}
	_, err := t.lookup(ctx, from, event, data)
	return err == nil
}

// Events lists the events defined for from, sorted by name. Guards are not evaluated.
func (t *Table) Events(from State) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	events := make([]Event, 0, len(t.transitions[from]))
	for e := range t.transitions[from] {
		events = append(events, e)
	}
	slices.Sort(events)
	return events
}

// IsTerminal reports whether no transition leaves s.
func (t *Table) IsTerminal(s State) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.transitions[s]) == 0
}

func (t *Table) lookup(ctx context.Context, from State, event Event, data any) (Transition, error) {
	t.mu.RLock()
	candidates := t.transitions[from][event]
	t.mu.RUnlock()

	if len(candidates) == 0 {
		return Transition{}, NewErrNoTransitionAvailable(from, event)
	}

	for _, tr := range candidates {
		if guardsPass(ctx, tr, from, event, data) {
			return tr, nil
		}
	}
	return Transition{}, NewErrTransitionRejected(from, event)
}

func guardsPass(ctx context.Context, tr Transition, from State, event Event, data any) bool {
	for _, guard := range tr.Guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
