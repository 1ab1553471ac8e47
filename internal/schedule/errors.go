package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStopped is returned when submitting work to a stopped Scheduler.
	ErrStopped = errors.New("scheduler stopped")

	// ErrInvalidInterval is returned by Every for a non-positive interval.
	ErrInvalidInterval = errors.New("interval must be greater than 0")
)

// A TaskError reports a Task whose work returned an error or panicked.
type TaskError struct {
	ID  string
	Due time.Time
	Err error

	// Panic holds the recovered value when the work panicked.
	Panic any
}

func (e *TaskError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("task %s panicked: %v", e.ID, e.Panic)
	}
	return fmt.Sprintf("task %s failed: %v", e.ID, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

func (e *TaskError) reason() string {
	if e.Panic != nil {
		return "panic"
	}
	return "error"
}
