// Package clock abstracts the passage of time so that the scheduler can be
// driven by a simulated clock in tests.
package clock

import (
	"time"

	clk "github.com/benbjohnson/clock"
)

// A Clock reports the current time and creates timers.
type Clock interface {
	Now() time.Time

	// TimerAt returns a Timer which fires once the clock reaches deadline,
	// or immediately if it already has.
	TimerAt(deadline time.Time) Timer
}

// A Timer delivers a single value on C once its deadline passes.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Real returns a Clock backed by the system clock.
func Real() Clock { return &realClock{c: clk.New()} }

type realClock struct {
	c clk.Clock
}

func (r *realClock) Now() time.Time { return r.c.Now() }

func (r *realClock) TimerAt(deadline time.Time) Timer {
	return &timer{t: r.c.Timer(deadline.Sub(r.c.Now()))}
}

// timer adapts a *clk.Timer, whose channel is a field, to Timer.
type timer struct {
	t *clk.Timer
}

func (t *timer) C() <-chan time.Time { return t.t.C }
func (t *timer) Stop() bool          { return t.t.Stop() }

var _ Clock = &realClock{}
