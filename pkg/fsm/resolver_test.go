package fsm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverRanges(t *testing.T) {
	_, ok := DiscoverRanges(nil)
	assert.False(t, ok)

	r, ok := DiscoverRanges([]Transition{
		{From: 3, Event: 10, To: 7},
		{From: 5, Event: 2, To: 1},
		{From: 9, Event: 6, To: 3},
	})
	require.True(t, ok)
	assert.Equal(t, Ranges{StateMin: 1, StateMax: 9, EventMin: 2, EventMax: 10}, r)
}

func TestIndexEligible(t *testing.T) {
	assert.True(t, IndexEligible([]Transition{
		{From: 0, Event: 1, To: 1},
		{From: 1, Event: 1, To: 0},
	}))
	assert.False(t, IndexEligible([]Transition{
		{From: 0, Event: 1, To: 1},
		{From: 0, Event: 1, To: 2},
	}))
}

func TestSortedTransitions_StableCopy(t *testing.T) {
	table := []Transition{
		{From: 2, Event: 1, To: 0},
		{From: 0, Event: 2, To: 1},
		{From: 0, Event: 1, To: 5},
		{From: 0, Event: 1, To: 6},
	}
	sorted := SortedTransitions(table)

	assert.Equal(t, []Transition{
		{From: 0, Event: 1, To: 5},
		{From: 0, Event: 1, To: 6},
		{From: 0, Event: 2, To: 1},
		{From: 2, Event: 1, To: 0},
	}, sorted)
	assert.Equal(t, State(2), table[0].From, "caller's table is untouched")
}

func TestBuildIndex_Cells(t *testing.T) {
	table := []Transition{
		{From: 10, Event: 5, To: 11},
		{From: 11, Event: 7, To: 12},
		{From: 12, Event: 5, To: 10},
	}
	r, _ := DiscoverRanges(table)
	cells, ok := IndexCells(r)
	require.True(t, ok)
	index := buildIndex(table, r, cells)

	// 3 states x 3 events
	require.Len(t, index, 9)
	assert.Equal(t, int32(0), index[indexCell(r, 10, 5)])
	assert.Equal(t, int32(1), index[indexCell(r, 11, 7)])
	assert.Equal(t, int32(2), index[indexCell(r, 12, 5)])
	assert.Equal(t, int32(-1), index[indexCell(r, 11, 6)])
	assert.Equal(t, 8, indexCell(r, 12, 7))
}

func TestIndexCells(t *testing.T) {
	cases := []struct {
		name  string
		r     Ranges
		cells int
		ok    bool
	}{
		{"single cell", Ranges{StateMin: 3, StateMax: 3, EventMin: -2, EventMax: -2}, 1, true},
		{"negative events", Ranges{StateMin: 0, StateMax: 1, EventMin: -3, EventMax: 2}, 12, true},
		{"full event range", Ranges{StateMin: 0, StateMax: 1, EventMin: math.MinInt, EventMax: math.MaxInt}, 0, false},
		{"full state range", Ranges{StateMin: 0, StateMax: math.MaxInt, EventMin: 0, EventMax: 0}, 0, false},
		{"product overflows", Ranges{StateMin: 0, StateMax: math.MaxInt / 2, EventMin: 0, EventMax: 2}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cells, ok := IndexCells(tc.r)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.cells, cells)
		})
	}
}

func TestIndexCell_NegativeEvents(t *testing.T) {
	r := Ranges{StateMin: 0, StateMax: 1, EventMin: -3, EventMax: 2}
	assert.Equal(t, 0, indexCell(r, 0, -3))
	assert.Equal(t, 5, indexCell(r, 0, 2))
	assert.Equal(t, 6, indexCell(r, 1, -3))
	assert.Equal(t, 11, indexCell(r, 1, 2))
}
