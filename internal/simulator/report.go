package simulator

import (
	"fmt"

	"github.com/turtacn/Tabula/pkg/fsm"
)

// TraceEntry is one callback fired during a simulation. Step is zero for the
// callbacks fired by Init.
type TraceEntry struct {
	Instance int
	Step     int
	Kind     fsm.CallbackKind
	State    string
	Event    string
}

func (t TraceEntry) String() string {
	ev := t.Event
	if ev == "" {
		ev = "-"
	}
	return fmt.Sprintf("#%d step=%d %-5s %s (event %s)", t.Instance, t.Step, t.Kind, t.State, ev)
}

// Report is the outcome of one simulation run.
type Report struct {
	RunID   string
	Machine string
	Trace   []TraceEntry
	// Final maps instance index to its state name after the run.
	Final map[int]string
	// Steps counts Run calls across all instances.
	Steps int
	// Rejected counts script events the engine refused as out of range.
	Rejected int
	// Truncated is set when an instance hit the step limit with events left.
	Truncated bool
}

// session is the per-instance user data handed to the engine.
type session struct {
	index    int
	steps    int
	rejected int
	fires    []int
	trace    []TraceEntry
}

// Personal.AI order the ending
