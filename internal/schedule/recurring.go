package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/cronexpr"
)

// Every returns Work which runs work and then resubmits itself to run again
// interval later. The next run is scheduled even if work fails or panics, and
// rescheduling stops quietly once the Scheduler is stopped.
func Every(interval time.Duration, work Work) (Work, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	return recurring(work, func(s *Scheduler, w Work) (string, error) {
		return s.Schedule(w, interval)
	}), nil
}

// Cron returns Work which runs work and then resubmits itself at the next
// time matching the cron expression.
func Cron(expr string, work Work) (Work, error) {
	e, err := parseCron(expr)
	if err != nil {
		return nil, err
	}
	return cronWork(e, work), nil
}

func cronWork(e *cronexpr.Expression, work Work) Work {
	return recurring(work, func(s *Scheduler, w Work) (string, error) {
		next := e.Next(s.Now())
		if next.IsZero() {
			// The expression has no future matches.
			return "", nil
		}
		return s.ScheduleAt(w, next)
	})
}

// recurring wraps work so that, once it returns, next submits the wrapper
// again through the Scheduler which ran it.
func recurring(work Work, next func(s *Scheduler, w Work) (string, error)) Work {
	var self Work
	self = func(ctx context.Context, s *Scheduler) (err error) {
		defer func() {
			if _, serr := next(s, self); serr != nil && !errors.Is(serr, ErrStopped) {
				err = errors.Join(err, fmt.Errorf("failed to reschedule task: %w", serr))
			}
		}()
		return work(ctx, s)
	}
	return self
}

// Every schedules work to run every interval, starting one interval from now.
func (s *Scheduler) Every(interval time.Duration, work Work) (string, error) {
	w, err := Every(interval, work)
	if err != nil {
		return "", err
	}
	return s.Schedule(w, interval)
}

// Cron schedules work to run at every time matching the cron expression,
// starting with the next match after now.
func (s *Scheduler) Cron(expr string, work Work) (string, error) {
	e, err := parseCron(expr)
	if err != nil {
		return "", err
	}

	next := e.Next(s.Now())
	if next.IsZero() {
		return "", fmt.Errorf("cron expression %q has no future run times", expr)
	}
	return s.ScheduleAt(cronWork(e, work), next)
}
