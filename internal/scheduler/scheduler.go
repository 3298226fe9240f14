// Package scheduler owns the repeating sync timer. At most one cycle runs
// at a time; ticks that land while a cycle is in flight are skipped, not
// queued.
package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"jobradar-engine/internal/ingest"
)

// ErrSyncInProgress is returned by TriggerSync while a cycle is running.
var ErrSyncInProgress = errors.New("scheduler: sync already in progress")

type SyncFunc func(ctx context.Context) ingest.Summary

type CleanupFunc func(ctx context.Context, daysOld int) (int64, error)

// Options tune the timer; zero values fall back to the defaults below.
type Options struct {
	FirstDelay    time.Duration // delay before the first cycle after Start
	Interval      time.Duration // recurring interval
	CleanupDays   int           // staleness horizon handed to cleanup
	CleanupChance float64       // per-cycle probability of running cleanup
}

func (o *Options) defaults() {
	if o.FirstDelay <= 0 {
		o.FirstDelay = 30 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = 60 * time.Minute
	}
	if o.CleanupDays <= 0 {
		o.CleanupDays = 30
	}
	if o.CleanupChance <= 0 {
		o.CleanupChance = 0.1
	}
}

type Status struct {
	Syncing     bool    `json:"syncing"`
	TimerActive bool    `json:"timerActive"`
	NextTickSec float64 `json:"nextTickSeconds"`
}

type Scheduler struct {
	log     *zap.Logger
	syncAll SyncFunc
	cleanup CleanupFunc
	opts    Options

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	nextTick time.Time

	// inProgress is the only shared mutable state besides the store; it is
	// cleared on every exit path of a cycle.
	inProgress atomic.Bool
}

func New(log *zap.Logger, syncAll SyncFunc, cleanup CleanupFunc, opts Options) *Scheduler {
	opts.defaults()
	return &Scheduler{log: log, syncAll: syncAll, cleanup: cleanup, opts: opts}
}

// Start transitions stopped→running. Calling Start while running is a
// logged no-op. The first cycle runs after FirstDelay so a process restart
// under load doesn't immediately fan out to every source.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Info("scheduler already running, start ignored")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.nextTick = time.Now().Add(s.opts.FirstDelay)

	go s.loop(ctx)
	s.log.Info("scheduler started",
		zap.Duration("firstDelay", s.opts.FirstDelay),
		zap.Duration("interval", s.opts.Interval))
}

// Stop cancels future ticks. An in-flight cycle always runs to completion;
// there is no mid-cycle cancellation. Stop while stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.nextTick = time.Time{}
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	first := time.NewTimer(s.opts.FirstDelay)
	defer first.Stop()

	select {
	case <-ctx.Done():
		return
	case <-first.C:
		s.setNextTick(time.Now().Add(s.opts.Interval))
		s.runCycle(ctx)
	}

	t := time.NewTicker(s.opts.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.setNextTick(time.Now().Add(s.opts.Interval))
			s.runCycle(ctx)
		}
	}
}

// runCycle executes one sync cycle unless one is already in flight, in
// which case the tick is dropped entirely.
func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.log.Info("previous cycle still running, tick skipped")
		return
	}
	defer s.inProgress.Store(false)

	s.syncAll(ctx)
	s.maybeCleanup(ctx)
}

// maybeCleanup runs staleness cleanup on a small fraction of cycles. The
// probabilistic trigger keeps cleanup off the critical schedule; exact
// timing does not matter for correctness.
func (s *Scheduler) maybeCleanup(ctx context.Context) {
	if rand.Float64() >= s.opts.CleanupChance {
		return
	}
	if _, err := s.cleanup(ctx, s.opts.CleanupDays); err != nil {
		s.log.Error("cleanup failed", zap.Error(err))
	}
}

// TriggerSync runs one cycle immediately, independent of the timer. It is
// rejected rather than queued while a scheduled cycle is in flight.
func (s *Scheduler) TriggerSync(ctx context.Context) (ingest.Summary, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		return ingest.Summary{}, ErrSyncInProgress
	}
	defer s.inProgress.Store(false)

	sum := s.syncAll(ctx)
	s.maybeCleanup(ctx)
	return sum, nil
}

// GetStatus reports whether a cycle is running, whether the timer is
// active, and the approximate time until the next tick.
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Syncing:     s.inProgress.Load(),
		TimerActive: s.running,
	}
	if s.running && !s.nextTick.IsZero() {
		if d := time.Until(s.nextTick); d > 0 {
			st.NextTickSec = d.Seconds()
		}
	}
	return st
}

func (s *Scheduler) setNextTick(t time.Time) {
	s.mu.Lock()
	s.nextTick = t
	s.mu.Unlock()
}
