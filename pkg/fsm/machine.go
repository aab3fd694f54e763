// Package fsm is a table-driven finite state machine engine.
//
// An Engine owns a fixed pool of instance slots. Each instance runs one
// transition table against events pulled from a caller-supplied queue
// backend, one event per Run call. The engine takes no locks: callers drive
// it from a single goroutine or serialize access themselves.
package fsm

import (
	"fmt"
	"time"

	"github.com/turtacn/Tabula/pkg/consts"
	ferrors "github.com/turtacn/Tabula/pkg/errors"
	"github.com/turtacn/Tabula/pkg/logger"
)

// Engine runs FSM instances out of a fixed pool.
type Engine struct {
	pool            *pool
	capacity        int
	queueSize       int
	indexed         bool
	maxIndexEntries int
	log             logger.Logger
	observer        Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapacity sets the number of instance slots. Zero makes every Init fail.
func WithCapacity(n int) Option {
	return func(e *Engine) {
		e.capacity = n
	}
}

// WithQueueSize sets the number of events each slot can lend to its queue backend.
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		e.queueSize = n
	}
}

// WithIndexedLookup enables the direct (state, event) index for tables with unique keys.
func WithIndexedLookup(enabled bool) Option {
	return func(e *Engine) {
		e.indexed = enabled
	}
}

// WithMaxIndexEntries caps the size of a direct index; larger tables use linear scan.
func WithMaxIndexEntries(n int) Option {
	return func(e *Engine) {
		e.maxIndexEntries = n
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithObserver sets the instrumentation hook.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// New builds an Engine. Options are applied in order; the pool is sized
// after all options so WithQueueSize may appear anywhere.
func New(opts ...Option) *Engine {
	e := &Engine{
		capacity:        consts.DefaultPoolCapacity,
		queueSize:       consts.DefaultQueueSize,
		maxIndexEntries: consts.DefaultMaxIndexEntries,
		log:             logger.Log,
		observer:        NopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.capacity = max(e.capacity, 0)
	e.queueSize = max(e.queueSize, 0)
	e.pool = newPool(e.capacity, e.queueSize)
	e.log = e.log.With("component", "fsm")
	return e
}

// Capacity returns the number of slots in the pool.
func (e *Engine) Capacity() int { return len(e.pool.slots) }

// InUse returns the number of active instances.
func (e *Engine) InUse() int { return e.pool.inUse }

// Init claims a slot and brings up an instance in def.Initial, firing the
// initial state's entry and run callbacks. On failure no handle is returned
// and the slot, if one was claimed, is released again. A failing initial
// callback is logged but does not fail Init; the instance is already settled.
func (e *Engine) Init(def Definition) (Handle, error) {
	if err := validateTable(def); err != nil {
		return Handle{}, ferrors.New(ferrors.ErrCodeInvalidDefinition, "Init", "invalid definition", err)
	}

	h, in, err := e.pool.acquire()
	if err != nil {
		e.observer.PoolExhausted()
		e.log.Warn("instance pool exhausted", "capacity", e.Capacity())
		return Handle{}, err
	}

	in.transitions = def.Transitions
	in.states = def.States
	in.queue = def.Queue
	in.data = def.Data

	qh, err := def.Queue.Init(BufferDescriptor{Storage: in.storage})
	if err != nil || qh == nil {
		e.pool.release(h)
		if err == nil {
			err = fmt.Errorf("backend returned no handle")
		}
		return Handle{}, ferrors.New(ferrors.ErrCodeQueueInit, "Init", "event queue initialization failed", err)
	}
	in.queueHandle = qh

	in.ranges, _ = DiscoverRanges(def.Transitions)
	if e.indexed {
		cells, fits := IndexCells(in.ranges)
		switch {
		case !IndexEligible(def.Transitions):
			e.log.Debug("duplicate (state, event) keys, using linear scan", "handle", h)
		case !fits || cells > e.maxIndexEntries:
			e.log.Debug("index too large, using linear scan", "handle", h, "cells", cells, "fits", fits)
		default:
			in.index = buildIndex(def.Transitions, in.ranges, cells)
		}
	}

	in.current = def.Initial
	e.observer.InstanceAcquired(h)
	e.log.Debug("instance initialized", "handle", h, "initial", def.Initial,
		"states", fmt.Sprintf("[%d,%d]", in.ranges.StateMin, in.ranges.StateMax),
		"events", fmt.Sprintf("[%d,%d]", in.ranges.EventMin, in.ranges.EventMax),
		"indexed", in.index != nil)

	if err := e.dispatch(in, e.context(h, in)); err != nil {
		e.log.Warn("initial state callback failed", "handle", h, "err", err)
	}
	return h, nil
}

// AddEvent validates ev against the instance's event range and queues it.
// Out-of-range events are rejected without touching the queue.
func (e *Engine) AddEvent(h Handle, ev Event) error {
	in := e.pool.lookup(h)
	if in == nil {
		return invalidHandle("AddEvent", h)
	}
	if !in.ranges.ContainsEvent(ev) {
		err := ferrors.New(ferrors.ErrCodeEventOutOfRange, "AddEvent",
			fmt.Sprintf("event %d outside [%d, %d]", ev, in.ranges.EventMin, in.ranges.EventMax), nil)
		e.observer.EventQueued(ev, err)
		e.log.Warn("event rejected", "handle", h, "event", ev)
		return err
	}
	if qerr := in.queue.Add(in.queueHandle, ev); qerr != nil {
		err := ferrors.New(ferrors.ErrCodeQueueFull, "AddEvent", fmt.Sprintf("queue rejected event %d", ev), qerr)
		e.observer.EventQueued(ev, err)
		return err
	}
	e.observer.EventQueued(ev, nil)
	return nil
}

// Run performs exactly one step: pop one event, fire the first matching
// transition if any, and dispatch callbacks.
//
// It reports StatusNoOp when the queue was empty or no transition matched
// (the event is consumed either way), StatusMoreQueued when a transition
// fired and events remain, StatusOK when a transition fired and the queue
// is drained, and StatusError with a non-nil error otherwise.
func (e *Engine) Run(h Handle) (Status, error) {
	in := e.pool.lookup(h)
	if in == nil {
		return StatusError, invalidHandle("Run", h)
	}
	if in.queue.IsEmpty(in.queueHandle) {
		return StatusNoOp, nil
	}

	start := time.Now()
	ev := in.queue.Read(in.queueHandle)
	if !in.ranges.ContainsEvent(ev) {
		err := ferrors.New(ferrors.ErrCodeEventOutOfRange, "Run",
			fmt.Sprintf("queue returned event %d outside [%d, %d]", ev, in.ranges.EventMin, in.ranges.EventMax), nil)
		e.observer.Stepped(StatusError, false, time.Since(start))
		return StatusError, err
	}

	ctx := e.context(h, in)
	ctx.Event = ev
	ctx.HasEvent = true

	t := e.resolve(in, ctx, ev)
	if t != nil {
		e.log.Debug("transition", "handle", h, "from", in.current, "event", ev, "to", t.To)
		in.previous = in.current
		in.current = t.To
		ctx.Previous = in.previous
		ctx.Current = in.current
	} else {
		e.log.Debug("no transition", "handle", h, "state", in.current, "event", ev)
	}

	if err := e.dispatch(in, ctx); err != nil {
		e.observer.Stepped(StatusError, t != nil, time.Since(start))
		return StatusError, ferrors.New(ferrors.ErrCodeCallbackFailed, "Run", "state callback failed", err)
	}

	// Callbacks may queue follow-up events, so the queue is checked after
	// dispatch. They may also have released the instance.
	status := StatusNoOp
	if t != nil {
		status = StatusOK
		if e.pool.lookup(h) != nil && !in.queue.IsEmpty(in.queueHandle) {
			status = StatusMoreQueued
		}
	}
	e.observer.Stepped(status, t != nil, time.Since(start))
	return status, nil
}

// Deinit releases the instance's slot. Releasing a stale handle does nothing.
func (e *Engine) Deinit(h Handle) {
	if e.pool.release(h) {
		e.observer.InstanceReleased(h)
		e.log.Debug("instance released", "handle", h)
	}
}

// Active reports whether h addresses a live instance.
func (e *Engine) Active(h Handle) bool {
	return e.pool.lookup(h) != nil
}

// CurrentState returns the instance's current state.
func (e *Engine) CurrentState(h Handle) (State, error) {
	in := e.pool.lookup(h)
	if in == nil {
		return StateInvalid, invalidHandle("CurrentState", h)
	}
	return in.current, nil
}

// PreviousState returns the state recorded before the last step. Between
// calls it always equals CurrentState.
func (e *Engine) PreviousState(h Handle) (State, error) {
	in := e.pool.lookup(h)
	if in == nil {
		return StateInvalid, invalidHandle("PreviousState", h)
	}
	return in.previous, nil
}

// Data returns the user data passed to Init.
func (e *Engine) Data(h Handle) (any, error) {
	in := e.pool.lookup(h)
	if in == nil {
		return nil, invalidHandle("Data", h)
	}
	return in.data, nil
}

// Ranges returns the state and event ranges discovered at Init.
func (e *Engine) Ranges(h Handle) (Ranges, error) {
	in := e.pool.lookup(h)
	if in == nil {
		return Ranges{}, invalidHandle("Ranges", h)
	}
	return in.ranges, nil
}

// Pending reports whether the instance's queue holds events.
func (e *Engine) Pending(h Handle) bool {
	in := e.pool.lookup(h)
	return in != nil && !in.queue.IsEmpty(in.queueHandle)
}

// Full reports whether the instance's queue would reject the next event.
func (e *Engine) Full(h Handle) bool {
	in := e.pool.lookup(h)
	return in != nil && in.queue.IsFull(in.queueHandle)
}

// Indexed reports whether the instance resolves through the direct index.
func (e *Engine) Indexed(h Handle) bool {
	in := e.pool.lookup(h)
	return in != nil && in.index != nil
}

func (e *Engine) context(h Handle, in *instance) *Context {
	return &Context{
		Handle:   h,
		Current:  in.current,
		Previous: in.previous,
		Data:     in.data,
		Logger:   e.log,
	}
}

func invalidHandle(op string, h Handle) error {
	return ferrors.New(ferrors.ErrCodeInvalidHandle, op, fmt.Sprintf("handle %s is not active", h), nil)
}

// Personal.AI order the ending
