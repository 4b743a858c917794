// Package session runs one editing session: a single-owner scheduler that
// applies queued input and interleaves optimizer steps between turns.
//
// All access to the mechanism happens inside a turn. Turns never overlap,
// so the mechanism, the controller and the optimizer need no locks.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/chazu/linkage/pkg/config"
	"github.com/chazu/linkage/pkg/interact"
	"github.com/chazu/linkage/pkg/linkage"
	"github.com/chazu/linkage/pkg/optimize"
)

// DefaultQueueSize bounds the events accepted between two turns.
const DefaultQueueSize = 1000

var (
	// ErrQueueFull is returned by Send when a turn is overdue.
	ErrQueueFull = errors.New("session: event queue full")
	// ErrRunning is returned by Start on a loop that is already running.
	ErrRunning = errors.New("session: already running")
)

// Loop owns a controller and applies input to it one turn at a time.
type Loop struct {
	ctrl  *interact.Controller
	clock *Clock
	log   *slog.Logger
	id    uuid.UUID
	tick  time.Duration

	queueMu sync.Mutex
	queue   []Event

	turnMu sync.Mutex
	turns  uint64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Options configures a Loop.
type Options struct {
	Tick      time.Duration // interval between turns when started
	QueueSize int
	Clock     *Clock
	Logger    *slog.Logger
}

// New creates a loop around ctrl. Every log record carries a fresh
// session id.
func New(ctrl *interact.Controller, opts Options) *Loop {
	if opts.Tick == 0 {
		opts.Tick = time.Millisecond
	}
	if opts.QueueSize == 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Clock == nil {
		opts.Clock = NewClock(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	id := uuid.New()
	return &Loop{
		ctrl:  ctrl,
		clock: opts.Clock,
		log:   opts.Logger.With("session", id.String()),
		id:    id,
		tick:  opts.Tick,
		queue: make([]Event, 0, opts.QueueSize),
	}
}

// Build assembles a mechanism, its optimizer, a controller and a loop
// from cfg.
func Build(m *linkage.Mechanism, cfg config.Config, log *slog.Logger) (*Loop, error) {
	mode, err := interact.ParseMode(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	m.SetStepSize(cfg.Optimizer.StepSize)
	opt := optimize.New(m, rand.NewSource(cfg.Optimizer.Seed))
	opt.SetPhaseScale(cfg.Optimizer.PhaseScale)

	l := New(nil, Options{Tick: cfg.Optimizer.Tick, Logger: log})
	l.ctrl = interact.NewController(m, opt, interact.Options{
		AngularRate:    cfg.AngularRate,
		ClickThreshold: cfg.ClickThreshold,
		DragThreshold:  cfg.DragThreshold,
		Mode:           mode,
		Logger:         l.log,
	})
	return l, nil
}

// ID identifies the session in logs.
func (l *Loop) ID() uuid.UUID { return l.id }

// Clock returns the session clock.
func (l *Loop) Clock() *Clock { return l.clock }

// Turns returns the number of completed turns.
func (l *Loop) Turns() uint64 {
	l.turnMu.Lock()
	defer l.turnMu.Unlock()
	return l.turns
}

// Send queues an event for the next turn. Safe for concurrent use.
func (l *Loop) Send(e Event) error {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	if len(l.queue) >= cap(l.queue) {
		return ErrQueueFull
	}
	l.queue = append(l.queue, e)
	return nil
}

// SendNow stamps e with the clock's elapsed time and queues it.
func (l *Loop) SendNow(e Event) error {
	e.At = l.clock.Elapsed()
	return l.Send(e)
}

func (l *Loop) collect() []Event {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	events := l.queue
	l.queue = make([]Event, 0, cap(events))
	return events
}

// Turn applies every queued event in arrival order, then performs at most
// one optimizer step. A panic inside the turn is logged and returned as an
// error; the remaining events of that turn are dropped.
func (l *Loop) Turn() (err error) {
	l.turnMu.Lock()
	defer l.turnMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("turn panicked", "panic", r, "turn", l.turns)
			err = fmt.Errorf("session: turn %d panicked: %v", l.turns, r)
		}
		l.turns++
	}()

	var errs []error
	for _, e := range l.collect() {
		if err := l.apply(e); err != nil {
			l.log.Warn("event failed", "type", e.Type, "err", err)
			errs = append(errs, err)
		}
	}
	if l.ctrl.Mechanism().Optimizing() {
		l.ctrl.Step()
	}
	return errors.Join(errs...)
}

func (l *Loop) apply(e Event) error {
	c := l.ctrl
	switch e.Type {
	case EventDown:
		c.MouseDown(e.At, e.Point())
	case EventMove:
		return c.MouseMove(e.At, e.Point())
	case EventUp:
		return c.MouseUp(e.At, e.Point())
	case EventClick:
		c.MouseDown(e.At, e.Point())
		return c.MouseUp(e.At, e.Point())
	case EventKey:
		if e.Key == KeyPause {
			l.clock.Toggle()
			return nil
		}
		c.Key(e.Key)
	case EventMode:
		mode, err := interact.ParseMode(e.Mode)
		if err != nil {
			return err
		}
		c.SetMode(mode)
	default:
		return fmt.Errorf("session: unknown event type %q", e.Type)
	}
	return nil
}

// Do runs fn between turns with exclusive access to the controller.
func (l *Loop) Do(fn func(*interact.Controller)) (err error) {
	l.turnMu.Lock()
	defer l.turnMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("do panicked", "panic", r)
			err = fmt.Errorf("session: panic: %v", r)
		}
	}()
	fn(l.ctrl)
	return nil
}

// Replay queues every event of s and runs one turn per event, so each
// optimizer step is interleaved as it would be live.
func (l *Loop) Replay(s Script) error {
	var errs []error
	for _, e := range s.Events {
		if err := l.Send(e); err != nil {
			return err
		}
		if err := l.Turn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Background execution
// ---------------------------------------------------------------------------

// Start runs turns on a ticker until ctx is done or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.runMu.Lock()
	defer l.runMu.Unlock()
	if l.cancel != nil {
		return ErrRunning
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.stopped = make(chan struct{})
	l.log.Info("session started", "tick", l.tick)
	go l.run(ctx, l.stopped)
	return nil
}

func (l *Loop) run(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Turn already logs its failures.
			_ = l.Turn()
		}
	}
}

// Stop cancels a started loop and waits for the current turn to finish.
func (l *Loop) Stop() {
	l.runMu.Lock()
	cancel, stopped := l.cancel, l.stopped
	l.cancel, l.stopped = nil, nil
	l.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
	l.log.Info("session stopped", "turns", l.Turns())
}
