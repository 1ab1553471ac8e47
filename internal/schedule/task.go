package schedule

import (
	"context"
	"time"
)

// Work is a unit of deferred work. The Scheduler running it is passed in so
// that work may submit follow-up tasks without holding its own reference.
type Work func(ctx context.Context, s *Scheduler) error

// Func adapts a plain function into Work.
func Func(fn func()) Work {
	return func(context.Context, *Scheduler) error {
		fn()
		return nil
	}
}

// A Task pairs Work with the absolute time it becomes due. The due time is
// fixed when the Task is created.
type Task struct {
	id   string
	due  time.Time
	work Work
}

// NewTask creates a Task which becomes due at due.
func NewTask(id string, due time.Time, work Work) *Task {
	return &Task{
		id:   id,
		due:  due,
		work: work,
	}
}

// ID returns the identifier assigned to the Task at submission.
func (t *Task) ID() string { return t.id }

// Due returns the time at or after which the Task may run.
func (t *Task) Due() time.Time { return t.due }

func (t *Task) String() string {
	return t.id + "@" + t.due.Format(time.RFC3339Nano)
}

// Execute runs the Task's work synchronously. Panics are not recovered here.
func (t *Task) Execute(ctx context.Context, s *Scheduler) error {
	return t.work(ctx, s)
}

type taskKey struct{}

func withTask(ctx context.Context, t *Task) context.Context {
	return context.WithValue(ctx, taskKey{}, t)
}

// TaskFromContext returns the Task currently being executed, if any.
func TaskFromContext(ctx context.Context) (*Task, bool) {
	t, ok := ctx.Value(taskKey{}).(*Task)
	return t, ok
}
