package fsm

import (
	"errors"
	"fmt"
)

// CallbackKind names a lifecycle hook.
type CallbackKind string

const (
	CallbackExit  CallbackKind = "exit"
	CallbackEntry CallbackKind = "entry"
	CallbackRun   CallbackKind = "run"
)

// lookupStateFuncs returns the first entry for s, or nil.
func lookupStateFuncs(in *instance, s State) *StateFuncs {
	if s == StateInvalid || !in.ranges.ContainsState(s) {
		return nil
	}
	for i := range in.states {
		if in.states[i].State == s {
			return &in.states[i]
		}
	}
	return nil
}

// dispatch fires exit-of-old, entry-of-new and run-of-new when the state
// changed during this step, or run-of-current otherwise, then settles
// previous onto current. Every hook runs even if an earlier one failed.
// If a hook releases the instance, the remaining hooks are skipped and the
// slot is left alone.
func (e *Engine) dispatch(in *instance, ctx *Context) error {
	type hook struct {
		kind CallbackKind
		s    State
		cb   Callback
	}
	var seq [3]hook
	n := 0
	cur := lookupStateFuncs(in, in.current)
	if in.previous != in.current {
		if prev := lookupStateFuncs(in, in.previous); prev != nil {
			seq[n] = hook{CallbackExit, in.previous, prev.OnExit}
			n++
		}
		if cur != nil {
			seq[n] = hook{CallbackEntry, in.current, cur.OnEntry}
			seq[n+1] = hook{CallbackRun, in.current, cur.OnRun}
			n += 2
		}
	} else if cur != nil {
		seq[n] = hook{CallbackRun, in.current, cur.OnRun}
		n++
	}

	var errs []error
	for _, hk := range seq[:n] {
		if hk.cb == nil {
			continue
		}
		err := hk.cb.Call(ctx)
		e.observer.CallbackFired(hk.kind, err)
		if err != nil {
			e.log.Warn("state callback failed", "handle", ctx.Handle, "kind", hk.kind, "state", hk.s, "err", err)
			errs = append(errs, fmt.Errorf("%s(%d): %w", hk.kind, hk.s, err))
		}
		if !in.active || in.gen != ctx.Handle.gen {
			e.log.Debug("instance released by its own callback", "handle", ctx.Handle, "kind", hk.kind)
			return errors.Join(errs...)
		}
	}

	in.previous = in.current
	return errors.Join(errs...)
}

// Personal.AI order the ending
