package queue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Tabula/pkg/fsm"
	"github.com/turtacn/Tabula/pkg/queue"
)

func TestRing_FIFOAndWrap(t *testing.T) {
	r := queue.NewRing()
	h, err := r.Init(fsm.BufferDescriptor{Storage: make([]fsm.Event, 3)})
	require.NoError(t, err)

	assert.True(t, r.IsEmpty(h))
	require.NoError(t, r.Add(h, 1))
	require.NoError(t, r.Add(h, 2))
	assert.Equal(t, fsm.Event(1), r.Read(h))

	require.NoError(t, r.Add(h, 3))
	require.NoError(t, r.Add(h, 4))
	assert.True(t, r.IsFull(h))
	assert.ErrorIs(t, r.Add(h, 5), queue.ErrFull)
	assert.Equal(t, 3, r.Len(h))

	assert.Equal(t, fsm.Event(2), r.Read(h))
	assert.Equal(t, fsm.Event(3), r.Read(h))
	assert.Equal(t, fsm.Event(4), r.Read(h))
	assert.True(t, r.IsEmpty(h))
}

func TestRing_UsesLentStorage(t *testing.T) {
	storage := make([]fsm.Event, 2)
	r := queue.NewRing()
	h, err := r.Init(fsm.BufferDescriptor{Storage: storage})
	require.NoError(t, err)

	require.NoError(t, r.Add(h, 7))
	assert.Equal(t, fsm.Event(7), storage[0])
}

func TestRing_ZeroCapacity(t *testing.T) {
	_, err := queue.NewRing().Init(fsm.BufferDescriptor{})
	assert.ErrorIs(t, err, queue.ErrNoStorage)
}

func TestRing_ReadEmptyPanics(t *testing.T) {
	r := queue.NewRing()
	h, err := r.Init(fsm.BufferDescriptor{Storage: make([]fsm.Event, 1)})
	require.NoError(t, err)
	assert.Panics(t, func() { r.Read(h) })
}

func TestChannel_ConcurrentProducers(t *testing.T) {
	c := queue.NewChannel()
	h, err := c.Init(fsm.BufferDescriptor{Storage: make([]fsm.Event, 64)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 16; i++ {
				assert.NoError(t, c.Add(h, fsm.Event(i)))
			}
		}()
	}
	wg.Wait()

	assert.True(t, c.IsFull(h))
	assert.ErrorIs(t, c.Add(h, 0), queue.ErrFull)
	assert.Equal(t, 64, c.Len(h))
	for i := 0; i < 64; i++ {
		c.Read(h)
	}
	assert.True(t, c.IsEmpty(h))
}

func TestByName(t *testing.T) {
	b, err := queue.ByName("ring")
	require.NoError(t, err)
	assert.IsType(t, &queue.Ring{}, b)

	b, err = queue.ByName("channel")
	require.NoError(t, err)
	assert.IsType(t, &queue.Channel{}, b)

	_, err = queue.ByName("kafka")
	assert.Error(t, err)
}
