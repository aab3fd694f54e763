package queue

import (
	"fmt"

	"github.com/turtacn/Tabula/pkg/consts"
	"github.com/turtacn/Tabula/pkg/fsm"
)

// Backend is a fsm.QueueBackend that can also report its depth.
type Backend interface {
	fsm.QueueBackend
	Len(h fsm.QueueHandle) int
}

// ByName returns the backend configured under name.
func ByName(name consts.QueueBackend) (Backend, error) {
	switch name {
	case consts.QueueRing, "":
		return NewRing(), nil
	case consts.QueueChannel:
		return NewChannel(), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", name)
	}
}

// Personal.AI order the ending
