package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_AcquireRelease(t *testing.T) {
	p := newPool(2, 4)
	h0, in0, err := p.acquire()
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, in0.current)
	assert.Equal(t, StateInvalid, in0.previous)
	assert.Len(t, in0.storage, 4)

	h1, _, err := p.acquire()
	require.NoError(t, err)
	assert.Equal(t, 1, h1.Slot())

	_, _, err = p.acquire()
	assert.Error(t, err)

	in0.storage[0] = 99
	assert.True(t, p.release(h0))
	assert.False(t, p.release(h0))
	assert.Equal(t, Event(0), p.slots[0].storage[0], "storage is zeroed on release")
	assert.Equal(t, 1, p.inUse)

	h2, _, err := p.acquire()
	require.NoError(t, err)
	assert.Equal(t, 0, h2.Slot())
	assert.Nil(t, p.lookup(h0))
	assert.NotNil(t, p.lookup(h2))
}

func TestPool_SlotStorageIsDisjoint(t *testing.T) {
	p := newPool(3, 2)
	p.slots[0].storage = append(p.slots[0].storage, 1)
	assert.Equal(t, Event(0), p.slots[1].storage[0], "full slice expression keeps appends out of the neighbour")
}
