package fsm

import "time"

// Observer receives engine events for instrumentation. Implementations must
// be cheap; they run inline on every step.
type Observer interface {
	InstanceAcquired(h Handle)
	InstanceReleased(h Handle)
	PoolExhausted()
	EventQueued(ev Event, err error)
	Stepped(status Status, transitioned bool, elapsed time.Duration)
	CallbackFired(kind CallbackKind, err error)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) InstanceAcquired(Handle)             {}
func (NopObserver) InstanceReleased(Handle)             {}
func (NopObserver) PoolExhausted()                      {}
func (NopObserver) EventQueued(Event, error)            {}
func (NopObserver) Stepped(Status, bool, time.Duration) {}
func (NopObserver) CallbackFired(CallbackKind, error)   {}

// Personal.AI order the ending
