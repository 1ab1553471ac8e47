package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glizzus/softtimer/internal/clock"
	"github.com/glizzus/softtimer/internal/generator"
)

// Config configures a Scheduler. The zero value is ready to use.
type Config struct {
	// Clock drives due times and waits. Defaults to the real clock.
	Clock clock.Clock

	// Logger receives task failures and lifecycle events.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records scheduler activity. Defaults to discarded metrics.
	Metrics *Metrics

	// IDs assigns identifiers to submitted tasks. Defaults to UUIDv4.
	IDs generator.Generator[string]

	// OnError, if set, is called on the worker goroutine for every task
	// which returns an error or panics, after the failure is logged. A panic
	// in OnError is recovered and logged.
	OnError func(*TaskError)
}

// A Scheduler runs Work after a delay on a single worker goroutine. It must
// be created with New and is safe for concurrent use.
type Scheduler struct {
	clock   clock.Clock
	logger  *slog.Logger
	metrics *Metrics
	ids     generator.Generator[string]
	onError func(*TaskError)

	queue *Queue

	// running is the Task currently executing on the worker, if any.
	running atomic.Pointer[Task]

	// wake tells a sleeping worker that a task was submitted.
	wake chan struct{}

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a Scheduler and starts its worker.
func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.IDs == nil {
		cfg.IDs = &generator.UUIDV4Generator{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	queue := NewQueue()
	queue.observe = func(n int) { cfg.Metrics.QueueLength(float64(n)) }

	s := &Scheduler{
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		ids:     cfg.IDs,
		onError: cfg.OnError,

		queue: queue,
		wake:  make(chan struct{}, 1),

		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.run(ctx)

	return s
}

// Schedule submits work to run once delay has elapsed and returns the
// identifier of the new task. A negative delay is treated as zero.
func (s *Scheduler) Schedule(work Work, delay time.Duration) (string, error) {
	if delay < 0 {
		delay = 0
	}
	return s.submit(work, func(now time.Time) time.Time { return now.Add(delay) })
}

// ScheduleAt submits work to run at or after when.
func (s *Scheduler) ScheduleAt(work Work, when time.Time) (string, error) {
	return s.submit(work, func(time.Time) time.Time { return when })
}

func (s *Scheduler) submit(work Work, due func(now time.Time) time.Time) (string, error) {
	id, err := s.ids.Next()
	if err != nil {
		return "", fmt.Errorf("failed to generate task id: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return "", ErrStopped
	}

	// The deadline is fixed now, not when the worker dequeues the task.
	t := NewTask(id, due(s.clock.Now()), work)
	s.queue.Put(t)
	s.notify()

	s.metrics.TasksScheduledTotal()
	s.logger.Debug(
		"scheduled task",
		slog.String("taskID", t.ID()),
		slog.Time("due", t.Due()),
	)

	return id, nil
}

// notify wakes the worker. Signals coalesce, and the worker may wake even
// when the new task is not the earliest one.
func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Now returns the current time according to the Scheduler's clock.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// Len returns the number of tasks waiting to run.
func (s *Scheduler) Len() int { return s.queue.Len() }

// Done returns a channel which is closed once the worker has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Stop stops the worker and waits for it to exit or for ctx to be canceled.
// A task which is executing when Stop is called runs to completion, with its
// context canceled. Pending tasks are discarded once the worker exits. Stop
// may be called more than once.
//
// Work may stop its own Scheduler by passing the context it was given, or one
// derived from it. Stop then returns without waiting, as the worker cannot
// exit until that work returns.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	first := !s.stopped
	s.stopped = true
	s.mu.Unlock()

	if first {
		s.logger.Info("stopping scheduler", slog.Int("pending", s.queue.Len()))
		s.cancel()
	}

	if t, ok := TaskFromContext(ctx); ok && t == s.running.Load() {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop scheduler: %w", ctx.Err())
	}
}

// discardPending empties the queue after the worker has exited. No task can
// be submitted by then, as the stop flag is set before the worker is told to
// exit.
func (s *Scheduler) discardPending() {
	for _, t := range s.queue.Drain() {
		s.logger.Warn(
			"discarding pending task",
			slog.String("taskID", t.ID()),
			slog.Time("due", t.Due()),
		)
	}
}
