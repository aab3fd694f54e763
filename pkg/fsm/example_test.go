package fsm_test

import (
	"fmt"

	"github.com/turtacn/Tabula/pkg/fsm"
	"github.com/turtacn/Tabula/pkg/logger"
	"github.com/turtacn/Tabula/pkg/queue"
)

// A door that opens on a push and closes on a pull, driven by one Run per event.
func Example() {
	const (
		closed fsm.State = iota
		open
	)
	const (
		push fsm.Event = iota + 1
		pull
	)

	say := func(msg string) fsm.Callback {
		return fsm.CallbackFunc(func(ctx *fsm.Context) error {
			fmt.Println(msg)
			return nil
		})
	}

	engine := fsm.New(fsm.WithCapacity(1), fsm.WithLogger(logger.Discard()))
	h, err := engine.Init(fsm.Definition{
		Transitions: []fsm.Transition{
			{From: closed, Event: push, To: open},
			{From: open, Event: pull, To: closed},
		},
		States: []fsm.StateFuncs{
			{State: closed, OnEntry: say("closed")},
			{State: open, OnEntry: say("open"), OnExit: say("closing...")},
		},
		Queue:   queue.NewRing(),
		Initial: closed,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer engine.Deinit(h)

	_ = engine.AddEvent(h, push)
	_ = engine.AddEvent(h, pull)
	for {
		status, err := engine.Run(h)
		if err != nil || status != fsm.StatusMoreQueued {
			break
		}
	}

	// Output:
	// closed
	// open
	// closing...
	// closed
}
