// Package statemachine provides transition tables for records whose lifecycle state is
// persisted elsewhere (a database row, a stored binding).
//
// A Table maps (state, event) pairs to transitions with optional guards and actions. It keeps
// no current state: callers load the record, call Next and store the returned state. This
// keeps the table shareable between goroutines and requests.
//
// # Usage
//
//	const (
//	    Pending = statemachine.State("pending")
//	    Active  = statemachine.State("active")
//	    Confirm = statemachine.Event("confirm")
//	)
//
//	table := statemachine.MustNew(Pending,
//	    statemachine.WithTransition(Pending, Active, Confirm),
//	)
//
//	next, err := table.Next(ctx, record.Status, Confirm, record)
//	if err != nil {
//	    return err
//	}
//	record.Status = next
//
// # Guards and Actions
//
// Guards veto a transition based on runtime data. When several transitions share a from/event
// pair, the first whose guards pass is taken. Actions run after guard evaluation and before
// Next returns; any action error aborts the transition.
//
// # Error Handling
//
// Next returns *ErrNoTransitionAvailable when nothing is defined for the pair and
// *ErrTransitionRejected when guards blocked every candidate. Use
// IsNoTransitionAvailableError and IsTransitionRejectedError to tell them apart.
// Action failures wrap ErrActionFailed.
package statemachine
