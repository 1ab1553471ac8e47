package clock_test

import (
	"testing"
	"time"

	"github.com/glizzus/softtimer/internal/clock"
)

func TestFakeTimerFiresOnAdvance(t *testing.T) {
	start := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	f := clock.NewFake(start)

	timer := f.TimerAt(start.Add(time.Second))
	f.BlockUntil(1)

	f.Advance(500 * time.Millisecond)
	select {
	case <-timer.C():
		t.Fatal("timer fired before its deadline")
	default:
	}

	f.Advance(500 * time.Millisecond)
	select {
	case got := <-timer.C():
		if want := start.Add(time.Second); !got.Equal(want) {
			t.Errorf("timer fired at %v; want %v", got, want)
		}
	default:
		t.Fatal("timer did not fire at its deadline")
	}
}

func TestFakeTimerStop(t *testing.T) {
	start := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	f := clock.NewFake(start)

	timer := f.TimerAt(start.Add(time.Minute))
	if !timer.Stop() {
		t.Fatal("Stop on an armed timer returned false")
	}
	if timer.Stop() {
		t.Fatal("Stop on a stopped timer returned true")
	}

	f.Advance(time.Hour)
	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestFakePastDeadlineFiresImmediately(t *testing.T) {
	start := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	f := clock.NewFake(start)

	for _, deadline := range []time.Time{start, start.Add(-time.Second)} {
		select {
		case <-f.TimerAt(deadline).C():
		default:
			t.Errorf("timer for %v did not fire immediately at %v", deadline, start)
		}
	}
}

func TestFakeTimerArmedAfterAdvance(t *testing.T) {
	start := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	f := clock.NewFake(start)

	f.Advance(400 * time.Millisecond)
	deadline := start.Add(time.Second)
	timer := f.TimerAt(deadline)

	f.Advance(599 * time.Millisecond)
	select {
	case <-timer.C():
		t.Fatal("timer fired before its deadline")
	default:
	}

	f.Set(deadline)
	select {
	case got := <-timer.C():
		if !got.Equal(deadline) {
			t.Errorf("timer fired at %v; want %v", got, deadline)
		}
	default:
		t.Fatal("timer did not fire at its deadline")
	}
	if got := f.Now(); !got.Equal(deadline) {
		t.Errorf("Now = %v; want %v", got, deadline)
	}
}

func TestFakeBlockUntilTimer(t *testing.T) {
	start := time.Date(1981, 8, 29, 12, 0, 0, 0, time.UTC)
	f := clock.NewFake(start)

	armed := make(chan struct{})
	go func() {
		f.BlockUntilTimer(start.Add(10 * time.Millisecond))
		close(armed)
	}()

	f.TimerAt(start.Add(time.Second))
	f.TimerAt(start.Add(10 * time.Millisecond))

	select {
	case <-armed:
	case <-time.After(5 * time.Second):
		t.Fatal("BlockUntilTimer did not return after the timer was armed")
	}
}

func TestRealClockTimer(t *testing.T) {
	c := clock.Real()
	before := c.Now()

	timer := c.TimerAt(before.Add(time.Millisecond))
	got := <-timer.C()
	if got.Before(before) {
		t.Errorf("timer fired at %v, before it was created at %v", got, before)
	}
}
