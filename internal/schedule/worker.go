package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// run is the worker loop. It exits only when ctx is canceled by Stop.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	defer s.discardPending()

	for {
		if ctx.Err() != nil {
			return
		}

		t, err := s.queue.Take(ctx)
		if err != nil {
			return
		}

		remaining := t.Due().Sub(s.clock.Now())
		if remaining <= 0 {
			s.execute(ctx, t)
			continue
		}

		// Not due yet. Put it back so the queue holds every pending task, then
		// sleep until it is due or until a new submission may have beaten it.
		// The next Take re-reads the true minimum either way.
		s.queue.Put(t)
		if !s.wait(ctx, t.Due()) {
			return
		}
	}
}

// wait sleeps until deadline, returning early on a wake signal. It reports
// false only when the Scheduler is stopping.
func (s *Scheduler) wait(ctx context.Context, deadline time.Time) bool {
	timer := s.clock.TimerAt(deadline)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-s.wake:
	case <-timer.C():
	}
	return true
}

func (s *Scheduler) execute(ctx context.Context, t *Task) {
	lateness := s.clock.Now().Sub(t.Due())
	s.metrics.TaskLatenessSeconds(lateness.Seconds())
	s.logger.Debug(
		"executing task",
		slog.String("taskID", t.ID()),
		slog.Duration("lateness", lateness),
	)

	s.running.Store(t)
	err := s.safeExecute(withTask(ctx, t), t)
	s.running.Store(nil)
	s.metrics.TasksExecutedTotal()
	if err == nil {
		return
	}

	s.metrics.TasksFailedTotal(err.reason())
	s.logger.Error(
		"failed to execute task",
		slog.String("taskID", t.ID()),
		slog.Time("due", t.Due()),
		slog.Any("error", err),
	)
	if s.onError != nil {
		s.reportError(err)
	}
}

// reportError hands err to the OnError hook, which must not take the worker
// down with it.
func (s *Scheduler) reportError(err *TaskError) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(
				"error hook panicked",
				slog.String("taskID", err.ID),
				slog.Any("panic", r),
			)
		}
	}()
	s.onError(err)
}

// safeExecute runs t, converting a returned error or a panic into a
// TaskError so that the worker keeps running.
func (s *Scheduler) safeExecute(ctx context.Context, t *Task) (terr *TaskError) {
	defer func() {
		if r := recover(); r != nil {
			terr = &TaskError{
				ID:    t.ID(),
				Due:   t.Due(),
				Err:   fmt.Errorf("panic: %v", r),
				Panic: r,
			}
		}
	}()

	if err := t.Execute(ctx, s); err != nil {
		return &TaskError{ID: t.ID(), Due: t.Due(), Err: err}
	}
	return nil
}
