package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// OverlapPolicy decides what happens when a task's timer fires while the
// previous run of the same task has not finished.
type OverlapPolicy string

const (
	// OverlapSkip drops the tick; at most one run per task is in flight.
	OverlapSkip OverlapPolicy = "skip"

	// OverlapAllow starts a new run on every tick. Runs may overlap and the
	// last one to complete wins.
	OverlapAllow OverlapPolicy = "allow"
)

// Valid reports whether p is a known policy.
func (p OverlapPolicy) Valid() bool {
	return p == OverlapSkip || p == OverlapAllow
}

// Task is a unit of periodic work.
type Task struct {
	// Name identifies the task in logs.
	Name string

	// Interval is the time between runs. Must be positive.
	Interval time.Duration

	// Run performs one cycle. It must handle its own errors.
	Run func(ctx context.Context)
}

// ScheduledTask runs a [Task] immediately on start and then on every tick
// of its own ticker until stopped.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type ScheduledTask struct {
	task    Task
	overlap OverlapPolicy
	clock   clock.Clock
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool

	busy     atomic.Bool
	inFlight atomic.Int32
	runs     atomic.Int64
	skipped  atomic.Int64
}

// NewScheduledTask creates a stopped [ScheduledTask].
func NewScheduledTask(task Task, overlap OverlapPolicy, clk clock.Clock, logger *slog.Logger) *ScheduledTask {
	if !overlap.Valid() {
		overlap = OverlapSkip
	}
	return &ScheduledTask{
		task:    task,
		overlap: overlap,
		clock:   clk,
		logger:  logger,
	}
}

// Name returns the task name.
func (t *ScheduledTask) Name() string {
	return t.task.Name
}

// Runs returns how many runs have been started.
func (t *ScheduledTask) Runs() int64 {
	return t.runs.Load()
}

// Skipped returns how many ticks were dropped under [OverlapSkip].
func (t *ScheduledTask) Skipped() int64 {
	return t.skipped.Load()
}

// InFlight returns the number of runs currently executing.
func (t *ScheduledTask) InFlight() int {
	return int(t.inFlight.Load())
}

// Start begins the task in a background goroutine.
//
// The ticker is created before Start returns, so a virtual clock advanced
// after Start always reaches it. The first run fires immediately.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; if Stop was called before Start, Start is a no-op.
func (t *ScheduledTask) Start(ctx context.Context) {
	t.mu.Lock()
	if t.started || t.stopped {
		t.mu.Unlock()
		return
	}
	t.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	runCtx := t.ctx // capture under lock to avoid race
	ticker := t.clock.Ticker(t.task.Interval)
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		defer ticker.Stop()

		t.fire(runCtx)

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				t.fire(runCtx)
			}
		}
	}()
}

// Stop halts the task and waits for the tick loop and every in-flight run
// to return. Stop is idempotent and safe to call before Start.
func (t *ScheduledTask) Stop() {
	t.mu.Lock()
	if !t.stopped {
		t.stopped = true
		if t.cancel != nil {
			t.cancel()
		}
	}
	t.mu.Unlock()

	t.wg.Wait()
}

// fire starts one run in its own goroutine so a slow run never delays the
// tick loop.
func (t *ScheduledTask) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if t.overlap == OverlapSkip && !t.busy.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		t.logger.Debug("tick skipped, previous run still in flight", "task", t.task.Name)
		return
	}

	t.runs.Add(1)
	t.inFlight.Add(1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.inFlight.Add(-1)
		if t.overlap == OverlapSkip {
			defer t.busy.Store(false)
		}
		t.safeRun(ctx)
	}()
}

// safeRun calls the task with panic recovery. A panicking task is logged
// with a correlation ID and keeps its schedule.
func (t *ScheduledTask) safeRun(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("task panic",
				"task", t.task.Name,
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	t.task.Run(ctx)
}

// Scheduler owns a set of independent [ScheduledTask] values.
//
// Tasks share nothing: each has its own ticker and its own in-flight
// tracking, so a slow or failing task never delays another.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	tasks []*ScheduledTask
}

// NewScheduler creates a [Scheduler] that reads time from clk.
// A nil clk means the wall clock.
func NewScheduler(clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{clock: clk, logger: logger}
}

// Add registers a task and returns its handle. Tasks added after Start are
// not started automatically; call Start on the handle.
func (s *Scheduler) Add(task Task, overlap OverlapPolicy) *ScheduledTask {
	st := NewScheduledTask(task, overlap, s.clock, s.logger)
	s.mu.Lock()
	s.tasks = append(s.tasks, st)
	s.mu.Unlock()
	return st
}

// Tasks returns the registered tasks in registration order.
func (s *Scheduler) Tasks() []*ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ScheduledTask, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Start starts every registered task.
func (s *Scheduler) Start(ctx context.Context) {
	for _, t := range s.Tasks() {
		t.Start(ctx)
	}
}

// Stop stops every registered task and waits for them.
func (s *Scheduler) Stop() {
	for _, t := range s.Tasks() {
		t.Stop()
	}
}
