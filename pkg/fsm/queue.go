package fsm

// QueueHandle is the opaque value a QueueBackend hands out from Init.
type QueueHandle any

// BufferDescriptor lends a slot's preallocated event storage to a backend.
// Capacity is len(Storage).
type BufferDescriptor struct {
	Storage []Event
}

// QueueBackend is the event queue an instance pulls from. The engine never
// implements queue storage itself; it only calls through this interface.
//
// Add returns a non-nil error when the queue cannot take the event (full).
// Read is only called after IsEmpty returned false.
type QueueBackend interface {
	Init(desc BufferDescriptor) (QueueHandle, error)
	Add(h QueueHandle, ev Event) error
	Read(h QueueHandle) Event
	IsEmpty(h QueueHandle) bool
	IsFull(h QueueHandle) bool
}

// Personal.AI order the ending
