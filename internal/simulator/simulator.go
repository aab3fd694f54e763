// Package simulator drives a configured machine through the fsm engine and
// records every callback it fires.
package simulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/turtacn/Tabula/pkg/consts"
	ferrors "github.com/turtacn/Tabula/pkg/errors"
	"github.com/turtacn/Tabula/pkg/fsm"
	"github.com/turtacn/Tabula/pkg/logger"
	"github.com/turtacn/Tabula/pkg/protocol"
	"github.com/turtacn/Tabula/pkg/queue"
)

var errStepLimit = errors.New("step limit reached")

type Simulator struct {
	machine  *Machine
	engine   *fsm.Engine
	backend  queue.Backend
	maxSteps int
	log      logger.Logger
	observer fsm.Observer
}

// Option configures a Simulator.
type Option func(*Simulator)

func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		s.log = l
	}
}

// WithObserver forwards engine instrumentation, typically to monitor.Metrics.
func WithObserver(o fsm.Observer) Option {
	return func(s *Simulator) {
		s.observer = o
	}
}

// New compiles cfg.Machine and builds an engine sized by cfg.Engine.
func New(cfg *protocol.Config, opts ...Option) (*Simulator, error) {
	m, err := Compile(cfg.Machine)
	if err != nil {
		return nil, err
	}
	backend, err := queue.ByName(consts.QueueBackend(cfg.Engine.QueueBackend))
	if err != nil {
		return nil, ferrors.New(ferrors.ErrCodeConfigInvalid, "NewSimulator", "queue backend", err)
	}

	s := &Simulator{
		machine:  m,
		backend:  backend,
		maxSteps: cfg.Simulation.MaxSteps,
		log:      logger.Log,
		observer: fsm.NopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxSteps <= 0 {
		s.maxSteps = consts.DefaultMaxSteps
	}

	s.engine = fsm.New(
		fsm.WithCapacity(cfg.Engine.PoolCapacity),
		fsm.WithQueueSize(cfg.Engine.QueueSize),
		fsm.WithIndexedLookup(cfg.Engine.IndexedLookup),
		fsm.WithMaxIndexEntries(cfg.Engine.MaxIndexEntries),
		fsm.WithLogger(s.log),
		fsm.WithObserver(s.observer),
	)
	s.log = s.log.With("component", "simulator", "machine", m.Name)
	return s, nil
}

func (s *Simulator) Machine() *Machine { return s.machine }

func (s *Simulator) Engine() *fsm.Engine { return s.engine }

// Run brings up instances copies of the machine, feeds script to each of
// them and steps each one until its queue drains or the step limit is hit.
// A nil script falls back to the configured one. Instances are released
// before Run returns.
func (s *Simulator) Run(ctx context.Context, script []fsm.Event, instances int) (*Report, error) {
	if script == nil {
		script = s.machine.Script
	}
	if instances <= 0 {
		instances = 1
	}

	runID := uuid.NewString()
	log := s.log.With("run_id", runID)
	log.Info("simulation starting", "instances", instances, "script_len", len(script))

	sessions := make([]*session, 0, instances)
	handles := make([]fsm.Handle, 0, instances)
	defer func() {
		for _, h := range handles {
			s.engine.Deinit(h)
		}
	}()

	for i := 0; i < instances; i++ {
		sess := &session{index: i, fires: make([]int, len(s.machine.Transitions))}
		h, err := s.engine.Init(s.machine.Definition(s.backend, sess))
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		sessions = append(sessions, sess)
		handles = append(handles, h)
	}

	rep := &Report{
		RunID:   runID,
		Machine: s.machine.Name,
		Final:   make(map[int]string, instances),
	}
	for i, h := range handles {
		sess := sessions[i]
		err := s.drive(ctx, h, sess, script, log)
		switch {
		case errors.Is(err, errStepLimit):
			rep.Truncated = true
			log.Warn("step limit reached", "instance", i, "max_steps", s.maxSteps)
		case err != nil:
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}

		cur, err := s.engine.CurrentState(h)
		if err != nil {
			return nil, err
		}
		rep.Final[i] = s.machine.StateName(cur)
		rep.Trace = append(rep.Trace, sess.trace...)
		rep.Steps += sess.steps
		rep.Rejected += sess.rejected
	}

	log.Info("simulation finished", "steps", rep.Steps, "rejected", rep.Rejected, "truncated", rep.Truncated)
	return rep, nil
}

func (s *Simulator) drive(ctx context.Context, h fsm.Handle, sess *session, script []fsm.Event, log logger.Logger) error {
	for _, ev := range script {
		if err := s.enqueue(ctx, h, sess, ev, log); err != nil {
			return err
		}
	}
	for s.engine.Pending(h) {
		if err := s.step(ctx, h, sess); err != nil {
			return err
		}
	}
	return nil
}

// enqueue adds ev, stepping the instance to make room while its queue is full.
func (s *Simulator) enqueue(ctx context.Context, h fsm.Handle, sess *session, ev fsm.Event, log logger.Logger) error {
	for {
		err := s.engine.AddEvent(h, ev)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ferrors.ErrEventOutOfRange):
			sess.rejected++
			log.Warn("script event rejected", "instance", sess.index, "event", s.machine.EventName(ev))
			return nil
		case errors.Is(err, ferrors.ErrQueueFull):
			if err := s.step(ctx, h, sess); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

func (s *Simulator) step(ctx context.Context, h fsm.Handle, sess *session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess.steps >= s.maxSteps {
		return errStepLimit
	}
	sess.steps++
	status, err := s.engine.Run(h)
	if err != nil {
		return err
	}
	s.log.Debug("step", "instance", sess.index, "step", sess.steps, "status", status)
	return nil
}

// Personal.AI order the ending
