package simulator

import "github.com/turtacn/Tabula/pkg/fsm"

// Summary describes a compiled machine without running it.
type Summary struct {
	Machine       string
	Ranges        fsm.Ranges
	IndexEligible bool
	// IndexCells is -1 when the cell count does not fit in an int.
	IndexCells int
	// Indexed is true when an engine with indexed lookup enabled would use
	// the direct index for this table.
	Indexed     bool
	Sorted      []string
	Unreachable []string
}

// Inspect reports the discovered ranges, index eligibility, the table in
// (state, event) order and the declared states that cannot be reached from
// the initial state.
func (m *Machine) Inspect(maxIndexEntries int) Summary {
	r, _ := fsm.DiscoverRanges(m.Transitions)
	cells, fits := fsm.IndexCells(r)
	if !fits {
		cells = -1
	}
	sum := Summary{
		Machine:       m.Name,
		Ranges:        r,
		IndexEligible: fsm.IndexEligible(m.Transitions),
		IndexCells:    cells,
	}
	sum.Indexed = sum.IndexEligible && fits && cells <= maxIndexEntries

	for _, t := range fsm.SortedTransitions(m.Transitions) {
		sum.Sorted = append(sum.Sorted, m.Row(t))
	}

	seen := map[fsm.State]bool{m.Initial: true}
	frontier := []fsm.State{m.Initial}
	for len(frontier) > 0 {
		s := frontier[0]
		frontier = frontier[1:]
		for _, t := range m.Transitions {
			if t.From == s && !seen[t.To] {
				seen[t.To] = true
				frontier = append(frontier, t.To)
			}
		}
	}
	for i, name := range m.States {
		if !seen[fsm.State(i)] {
			sum.Unreachable = append(sum.Unreachable, name)
		}
	}
	return sum
}

// Personal.AI order the ending
