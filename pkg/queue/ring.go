// Package queue provides event queue backends for the fsm engine.
package queue

import (
	"errors"
	"fmt"

	"github.com/turtacn/Tabula/pkg/fsm"
)

var (
	// ErrFull is returned by Add when the queue has no room.
	ErrFull = errors.New("queue: full")
	// ErrNoStorage is returned by Init when the descriptor lends no storage.
	ErrNoStorage = errors.New("queue: zero-capacity buffer")
)

// Ring is a FIFO backend that stores events in the slot storage lent by the
// engine. It allocates nothing but the per-instance cursor. Not safe for
// concurrent use.
type Ring struct{}

// NewRing returns a Ring backend. One Ring can serve any number of instances.
func NewRing() *Ring { return &Ring{} }

type ring struct {
	buf   []fsm.Event
	head  int
	count int
}

var _ fsm.QueueBackend = (*Ring)(nil)

func (*Ring) Init(desc fsm.BufferDescriptor) (fsm.QueueHandle, error) {
	if len(desc.Storage) == 0 {
		return nil, ErrNoStorage
	}
	return &ring{buf: desc.Storage}, nil
}

func (*Ring) Add(h fsm.QueueHandle, ev fsm.Event) error {
	r := h.(*ring)
	if r.count == len(r.buf) {
		return ErrFull
	}
	r.buf[(r.head+r.count)%len(r.buf)] = ev
	r.count++
	return nil
}

// Read pops the oldest event. Reading an empty ring panics; the engine
// checks IsEmpty first.
func (*Ring) Read(h fsm.QueueHandle) fsm.Event {
	r := h.(*ring)
	if r.count == 0 {
		panic(fmt.Sprintf("queue: read from empty ring (cap %d)", len(r.buf)))
	}
	ev := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return ev
}

func (*Ring) IsEmpty(h fsm.QueueHandle) bool { return h.(*ring).count == 0 }

func (*Ring) IsFull(h fsm.QueueHandle) bool {
	r := h.(*ring)
	return r.count == len(r.buf)
}

// Len returns the number of queued events behind h.
func (*Ring) Len(h fsm.QueueHandle) int { return h.(*ring).count }

// Personal.AI order the ending
