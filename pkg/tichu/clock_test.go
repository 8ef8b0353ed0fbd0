package tichu

import (
	"time"
)

type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	f       func()
	fired   bool
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2021, 6, 1, 19, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that is due
func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)

	timers := append([]*fakeTimer{}, c.timers...)
	for _, t := range timers {
		if t.fired || t.stopped || t.at.After(c.now) {
			continue
		}

		t.fired = true
		t.f()
	}
}

func (c *fakeClock) pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}

	return n
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}

	t.stopped = true
	return true
}
