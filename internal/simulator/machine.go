package simulator

import (
	"fmt"

	ferrors "github.com/turtacn/Tabula/pkg/errors"
	"github.com/turtacn/Tabula/pkg/fsm"
	"github.com/turtacn/Tabula/pkg/protocol"
)

// Machine is a MachineConfig with names resolved to numeric ids. States and
// events are numbered in declaration order starting at zero.
type Machine struct {
	Name        string
	States      []string
	Events      []string
	Initial     fsm.State
	Transitions []fsm.Transition
	Script      []fsm.Event

	stateIDs map[string]fsm.State
	eventIDs map[string]fsm.Event
	funcs    []fsm.StateFuncs
}

// Compile resolves every name in mc and attaches tracing callbacks to each
// declared state and max_fires guards to the rows that ask for them.
func Compile(mc protocol.MachineConfig) (*Machine, error) {
	m := &Machine{
		Name:     mc.Name,
		States:   mc.States,
		Events:   mc.Events,
		stateIDs: make(map[string]fsm.State, len(mc.States)),
		eventIDs: make(map[string]fsm.Event, len(mc.Events)),
	}
	for i, name := range mc.States {
		if _, dup := m.stateIDs[name]; dup {
			return nil, invalidMachine("duplicate state %q", name)
		}
		m.stateIDs[name] = fsm.State(i)
	}
	for i, name := range mc.Events {
		if _, dup := m.eventIDs[name]; dup {
			return nil, invalidMachine("duplicate event %q", name)
		}
		m.eventIDs[name] = fsm.Event(i)
	}

	initial, ok := m.stateIDs[mc.Initial]
	if !ok {
		return nil, invalidMachine("unknown initial state %q", mc.Initial)
	}
	m.Initial = initial

	m.Transitions = make([]fsm.Transition, 0, len(mc.Transitions))
	for i, tc := range mc.Transitions {
		from, ok := m.stateIDs[tc.From]
		if !ok {
			return nil, invalidMachine("transition %d: unknown state %q", i, tc.From)
		}
		to, ok := m.stateIDs[tc.To]
		if !ok {
			return nil, invalidMachine("transition %d: unknown state %q", i, tc.To)
		}
		ev, ok := m.eventIDs[tc.Event]
		if !ok {
			return nil, invalidMachine("transition %d: unknown event %q", i, tc.Event)
		}
		t := fsm.Transition{From: from, Event: ev, To: to}
		if tc.Guard != nil && tc.Guard.MaxFires > 0 {
			t.Guard = maxFires(i, tc.Guard.MaxFires)
		}
		m.Transitions = append(m.Transitions, t)
	}

	script, err := m.EventIDs(mc.Script)
	if err != nil {
		return nil, err
	}
	m.Script = script

	m.funcs = make([]fsm.StateFuncs, len(mc.States))
	for i := range m.funcs {
		m.funcs[i] = fsm.StateFuncs{
			State:   fsm.State(i),
			OnEntry: m.tracer(fsm.CallbackEntry),
			OnExit:  m.tracer(fsm.CallbackExit),
			OnRun:   m.tracer(fsm.CallbackRun),
		}
	}
	return m, nil
}

// Definition builds the engine definition for one instance.
func (m *Machine) Definition(q fsm.QueueBackend, data any) fsm.Definition {
	return fsm.Definition{
		Transitions: m.Transitions,
		States:      m.funcs,
		Queue:       q,
		Data:        data,
		Initial:     m.Initial,
	}
}

// EventIDs resolves event names.
func (m *Machine) EventIDs(names []string) ([]fsm.Event, error) {
	ids := make([]fsm.Event, 0, len(names))
	for i, name := range names {
		id, ok := m.eventIDs[name]
		if !ok {
			return nil, invalidMachine("event %d: unknown event %q", i, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Machine) StateName(s fsm.State) string {
	if s >= 0 && int(s) < len(m.States) {
		return m.States[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

func (m *Machine) EventName(ev fsm.Event) string {
	if ev >= 0 && int(ev) < len(m.Events) {
		return m.Events[ev]
	}
	return fmt.Sprintf("event(%d)", ev)
}

// Row renders a transition as "from --event--> to".
func (m *Machine) Row(t fsm.Transition) string {
	row := fmt.Sprintf("%s --%s--> %s", m.StateName(t.From), m.EventName(t.Event), m.StateName(t.To))
	if t.Guard != nil {
		row += " [guarded]"
	}
	return row
}

// maxFires lets row fire at most limit times per instance. The count is kept
// in the instance's session, so instances never share it.
func maxFires(row, limit int) fsm.Guard {
	return fsm.GuardFunc(func(ctx *fsm.Context) bool {
		s, ok := ctx.Data.(*session)
		if !ok {
			return true
		}
		if s.fires[row] >= limit {
			return false
		}
		s.fires[row]++
		return true
	})
}

// tracer records every callback into the instance's session trace.
func (m *Machine) tracer(kind fsm.CallbackKind) fsm.Callback {
	return fsm.CallbackFunc(func(ctx *fsm.Context) error {
		s, ok := ctx.Data.(*session)
		if !ok {
			return nil
		}
		state := ctx.Current
		if kind == fsm.CallbackExit {
			state = ctx.Previous
		}
		entry := TraceEntry{
			Instance: s.index,
			Step:     s.steps,
			Kind:     kind,
			State:    m.StateName(state),
		}
		if ctx.HasEvent {
			entry.Event = m.EventName(ctx.Event)
		}
		s.trace = append(s.trace, entry)
		return nil
	})
}

func invalidMachine(format string, args ...any) error {
	return ferrors.New(ferrors.ErrCodeInvalidDefinition, "Compile", fmt.Sprintf(format, args...), nil)
}

// Personal.AI order the ending
