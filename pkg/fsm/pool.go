package fsm

import (
	"fmt"

	ferrors "github.com/turtacn/Tabula/pkg/errors"
)

// Handle addresses one instance in an Engine's pool. The zero Handle is never valid.
type Handle struct {
	slot int
	gen  uint32
}

// Slot returns the pool index the handle points at.
func (h Handle) Slot() int { return h.slot }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("fsm#%d.%d", h.slot, h.gen)
}

type instance struct {
	active   bool
	gen      uint32
	current  State
	previous State
	ranges   Ranges

	transitions []Transition
	states      []StateFuncs
	index       []int32

	queue       QueueBackend
	queueHandle QueueHandle
	storage     []Event

	data any
}

// reset zeroes the slot but keeps its storage array and generation counter.
func (in *instance) reset() {
	storage := in.storage
	gen := in.gen
	clear(storage)
	*in = instance{storage: storage, gen: gen}
}

// pool is a fixed arena of instance slots. Slots and their event storage are
// allocated once, at construction.
type pool struct {
	slots []instance
	inUse int
}

func newPool(capacity, queueSize int) *pool {
	p := &pool{slots: make([]instance, capacity)}
	backing := make([]Event, capacity*queueSize)
	for i := range p.slots {
		p.slots[i].storage = backing[i*queueSize : (i+1)*queueSize : (i+1)*queueSize]
	}
	return p
}

// acquire claims the lowest-index free slot.
func (p *pool) acquire() (Handle, *instance, error) {
	for i := range p.slots {
		in := &p.slots[i]
		if in.active {
			continue
		}
		in.reset()
		in.gen++
		if in.gen == 0 {
			in.gen = 1
		}
		in.active = true
		in.current = StateInvalid
		in.previous = StateInvalid
		p.inUse++
		return Handle{slot: i, gen: in.gen}, in, nil
	}
	return Handle{}, nil, ferrors.New(ferrors.ErrCodePoolExhausted, "Init",
		fmt.Sprintf("all %d instance slots in use", len(p.slots)), nil)
}

// release zeroes the slot addressed by h. Stale or inactive handles are ignored.
func (p *pool) release(h Handle) bool {
	in := p.lookup(h)
	if in == nil {
		return false
	}
	in.reset()
	p.inUse--
	return true
}

// lookup returns the active instance addressed by h, or nil.
func (p *pool) lookup(h Handle) *instance {
	if h.gen == 0 || h.slot < 0 || h.slot >= len(p.slots) {
		return nil
	}
	in := &p.slots[h.slot]
	if !in.active || in.gen != h.gen {
		return nil
	}
	return in
}

// Personal.AI order the ending
