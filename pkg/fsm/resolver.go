package fsm

import (
	"fmt"
	"math"
	"sort"
)

// DiscoverRanges scans the table once and returns the state range over every
// From and To and the event range over every Event. ok is false for an empty table.
func DiscoverRanges(ts []Transition) (r Ranges, ok bool) {
	if len(ts) == 0 {
		return Ranges{}, false
	}
	r = Ranges{
		StateMin: min(ts[0].From, ts[0].To),
		StateMax: max(ts[0].From, ts[0].To),
		EventMin: ts[0].Event,
		EventMax: ts[0].Event,
	}
	for _, t := range ts[1:] {
		r.StateMin = min(r.StateMin, t.From, t.To)
		r.StateMax = max(r.StateMax, t.From, t.To)
		r.EventMin = min(r.EventMin, t.Event)
		r.EventMax = max(r.EventMax, t.Event)
	}
	return r, true
}

// IndexEligible reports whether every (From, Event) key in ts is unique,
// which is the precondition for direct-index lookup.
func IndexEligible(ts []Transition) bool {
	type key struct {
		s State
		e Event
	}
	seen := make(map[key]struct{}, len(ts))
	for _, t := range ts {
		k := key{t.From, t.Event}
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// SortedTransitions returns a copy of ts ordered by (From, Event) ascending.
// Rows sharing a key keep their relative order, so guard priority survives.
func SortedTransitions(ts []Transition) []Transition {
	out := make([]Transition, len(ts))
	copy(out, ts)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].Event < out[j].Event
	})
	return out
}

// IndexCells is the number of cells a dense index over r needs. ok is false
// when the count does not fit in an int, which happens with extreme ids.
func IndexCells(r Ranges) (cells int, ok bool) {
	states, ok := span(int(r.StateMin), int(r.StateMax))
	if !ok {
		return 0, false
	}
	events, ok := span(int(r.EventMin), int(r.EventMax))
	if !ok {
		return 0, false
	}
	if events > math.MaxInt/states {
		return 0, false
	}
	return int(states * events), true
}

// span is hi-lo+1 computed without wrapping. The difference is exact in
// uint64 for any lo <= hi.
func span(lo, hi int) (uint64, bool) {
	d := uint64(hi) - uint64(lo)
	if d >= math.MaxInt {
		return 0, false
	}
	return d + 1, true
}

// buildIndex maps (state, event) cells to table positions; -1 marks an empty cell.
// Callers must check IndexEligible and IndexCells first.
func buildIndex(ts []Transition, r Ranges, cells int) []int32 {
	index := make([]int32, cells)
	for i := range index {
		index[i] = -1
	}
	for i, t := range ts {
		index[indexCell(r, t.From, t.Event)] = int32(i)
	}
	return index
}

// indexCell assumes s and ev lie inside r and that IndexCells(r) succeeded.
func indexCell(r Ranges, s State, ev Event) int {
	eventSpan := uint64(r.EventMax) - uint64(r.EventMin) + 1
	return int((uint64(s)-uint64(r.StateMin))*eventSpan + (uint64(ev) - uint64(r.EventMin)))
}

// resolve picks the transition to fire for (in.current, ev), or nil.
func (e *Engine) resolve(in *instance, ctx *Context, ev Event) *Transition {
	if in.index != nil {
		if !in.ranges.ContainsState(in.current) || !in.ranges.ContainsEvent(ev) {
			return nil
		}
		pos := in.index[indexCell(in.ranges, in.current, ev)]
		if pos < 0 {
			return nil
		}
		t := &in.transitions[pos]
		if t.Guard != nil && !t.Guard.Allow(ctx) {
			e.log.Debug("guard rejected transition", "handle", ctx.Handle, "from", t.From, "event", ev, "to", t.To)
			return nil
		}
		return t
	}

	for i := range in.transitions {
		t := &in.transitions[i]
		if t.From != in.current || t.Event != ev {
			continue
		}
		if t.Guard == nil || t.Guard.Allow(ctx) {
			return t
		}
		e.log.Debug("guard rejected transition", "handle", ctx.Handle, "from", t.From, "event", ev, "to", t.To)
	}
	return nil
}

// validateTable rejects tables the engine cannot run.
func validateTable(def Definition) error {
	if len(def.Transitions) == 0 {
		return fmt.Errorf("transition table is empty")
	}
	if def.Queue == nil {
		return fmt.Errorf("no queue backend")
	}
	known := false
	for i, t := range def.Transitions {
		if t.From < 0 || t.To < 0 {
			return fmt.Errorf("transition %d uses a negative state id", i)
		}
		if t.From == def.Initial || t.To == def.Initial {
			known = true
		}
	}
	for i, sf := range def.States {
		if sf.State < 0 {
			return fmt.Errorf("state entry %d uses a negative state id", i)
		}
	}
	if !known {
		return fmt.Errorf("initial state %d does not appear in the transition table", def.Initial)
	}
	return nil
}

// Personal.AI order the ending
