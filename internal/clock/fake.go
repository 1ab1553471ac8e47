package clock

import (
	"sync"
	"time"

	clk "github.com/benbjohnson/clock"
)

// Fake is a Clock whose time only moves when told to. It wraps a
// clk.Mock and additionally tracks armed timers so that tests can wait for
// the code under test to go to sleep. It is safe for concurrent use.
type Fake struct {
	// mu serializes reading the time and arming a timer against moving the
	// time, so a deadline is never converted against a stale now.
	mu    sync.Mutex
	cond  *sync.Cond
	mock  *clk.Mock
	armed map[*fakeTimer]struct{}
}

var _ Clock = &Fake{}

// NewFake creates a Fake clock starting at start.
func NewFake(start time.Time) *Fake {
	m := clk.NewMock()
	m.Set(start)

	f := &Fake{
		mock:  m,
		armed: make(map[*fakeTimer]struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mock.Now()
}

func (f *Fake) TimerAt(deadline time.Time) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.mock.Now()
	if !deadline.After(now) {
		c := make(chan time.Time, 1)
		c <- now
		return &fakeTimer{f: f, when: deadline, c: c}
	}

	mt := f.mock.Timer(deadline.Sub(now))
	t := &fakeTimer{f: f, when: deadline, c: mt.C, t: mt}
	f.armed[t] = struct{}{}
	f.cond.Broadcast()
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mock.Add(d)
	f.firedLocked()
}

// Set moves the clock to now, firing every timer that comes due.
func (f *Fake) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mock.Set(now)
	f.firedLocked()
}

// firedLocked forgets the timers the mock has just fired.
func (f *Fake) firedLocked() {
	now := f.mock.Now()
	for t := range f.armed {
		if !t.when.After(now) {
			delete(f.armed, t)
		}
	}
	f.cond.Broadcast()
}

// BlockUntil blocks until at least n timers are armed.
func (f *Fake) BlockUntil(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.armed) < n {
		f.cond.Wait()
	}
}

// BlockUntilTimer blocks until a timer which fires at exactly when is armed.
func (f *Fake) BlockUntilTimer(when time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for !f.armedLocked(when) {
		f.cond.Wait()
	}
}

func (f *Fake) armedLocked(when time.Time) bool {
	for t := range f.armed {
		if t.when.Equal(when) {
			return true
		}
	}
	return false
}

type fakeTimer struct {
	f    *Fake
	when time.Time
	c    <-chan time.Time

	// t is nil for a timer which fired when it was created.
	t *clk.Timer
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

func (t *fakeTimer) Stop() bool {
	if t.t == nil {
		return false
	}

	t.f.mu.Lock()
	defer t.f.mu.Unlock()

	delete(t.f.armed, t)
	t.f.cond.Broadcast()
	return t.t.Stop()
}
