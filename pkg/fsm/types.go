package fsm

import (
	"fmt"

	"github.com/turtacn/Tabula/pkg/logger"
)

// State identifies a state in a transition table.
type State int

// Event identifies an event in a transition table.
type Event int

// StateInvalid is the sentinel held by an instance before its first dispatch.
// Tables must not use it.
const StateInvalid State = -1

// Status is the outcome of a public engine operation.
type Status int

const (
	// StatusOK means the operation completed and nothing is left queued.
	StatusOK Status = iota
	// StatusError means the operation failed; the accompanying error says why.
	StatusError
	// StatusNoOp means nothing happened: empty queue or no matching transition.
	StatusNoOp
	// StatusMoreQueued means a step completed and events are still waiting.
	StatusMoreQueued
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusNoOp:
		return "no_op"
	case StatusMoreQueued:
		return "more_queued"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Context is passed to guards and state callbacks. A callback may pass
// Handle to Deinit; the engine then skips the remaining callbacks of that
// step and Run reports the step without touching the released slot.
type Context struct {
	Handle   Handle
	Current  State
	Previous State
	// Event is the event being processed; HasEvent is false during Init.
	Event    Event
	HasEvent bool
	Data     any
	Logger   logger.Logger
}

// Guard decides whether a matching transition may fire.
// It is called at most once per candidate per scan.
type Guard interface {
	Allow(ctx *Context) bool
}

// GuardFunc adapts a plain function to Guard.
type GuardFunc func(ctx *Context) bool

// Allow calls f(ctx).
func (f GuardFunc) Allow(ctx *Context) bool { return f(ctx) }

// Callback is a state lifecycle hook.
type Callback interface {
	Call(ctx *Context) error
}

// CallbackFunc adapts a plain function to Callback.
type CallbackFunc func(ctx *Context) error

// Call calls f(ctx).
func (f CallbackFunc) Call(ctx *Context) error { return f(ctx) }

// Transition is one row of a transition table.
//
// When several rows share the same From and Event, the first row in table
// order whose Guard is nil or allows the step is taken. Table order is part
// of the contract.
type Transition struct {
	From  State
	Event Event
	Guard Guard
	To    State
}

// StateFuncs binds lifecycle callbacks to a state. Any callback may be nil.
// If a state appears more than once in a table only the first entry is used.
type StateFuncs struct {
	State   State
	OnEntry Callback
	OnExit  Callback
	OnRun   Callback
}

// Ranges are the state and event bounds discovered from a transition table.
type Ranges struct {
	StateMin State
	StateMax State
	EventMin Event
	EventMax Event
}

// ContainsEvent reports whether ev lies within [EventMin, EventMax].
func (r Ranges) ContainsEvent(ev Event) bool {
	return ev >= r.EventMin && ev <= r.EventMax
}

// ContainsState reports whether s lies within [StateMin, StateMax].
func (r Ranges) ContainsState(s State) bool {
	return s >= r.StateMin && s <= r.StateMax
}

// Definition is everything Init needs to bring up an instance.
// The tables are referenced, not copied, and must not change while the
// instance is active.
type Definition struct {
	Transitions []Transition
	States      []StateFuncs
	Queue       QueueBackend
	Data        any
	Initial     State
}

// Personal.AI order the ending
