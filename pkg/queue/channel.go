package queue

import (
	"github.com/turtacn/Tabula/pkg/fsm"
)

// Channel is a backend over a buffered channel sized to the lent storage.
// Add may be called from other goroutines while the owner runs the engine;
// Read, IsEmpty and IsFull belong to the goroutine driving Run.
type Channel struct{}

// NewChannel returns a Channel backend.
func NewChannel() *Channel { return &Channel{} }

var _ fsm.QueueBackend = (*Channel)(nil)

func (*Channel) Init(desc fsm.BufferDescriptor) (fsm.QueueHandle, error) {
	if len(desc.Storage) == 0 {
		return nil, ErrNoStorage
	}
	return make(chan fsm.Event, len(desc.Storage)), nil
}

func (*Channel) Add(h fsm.QueueHandle, ev fsm.Event) error {
	select {
	case h.(chan fsm.Event) <- ev:
		return nil
	default:
		return ErrFull
	}
}

func (*Channel) Read(h fsm.QueueHandle) fsm.Event {
	return <-h.(chan fsm.Event)
}

func (*Channel) IsEmpty(h fsm.QueueHandle) bool { return len(h.(chan fsm.Event)) == 0 }

func (*Channel) IsFull(h fsm.QueueHandle) bool {
	ch := h.(chan fsm.Event)
	return len(ch) == cap(ch)
}

// Len returns the number of queued events behind h.
func (*Channel) Len(h fsm.QueueHandle) int { return len(h.(chan fsm.Event)) }

// Personal.AI order the ending
