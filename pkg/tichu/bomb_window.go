package tichu

import (
	"time"
)

// BombWindow is the interval after a trick closes during which any player may still bomb.
// The window only opens and closes when the owning round processes an event, so the
// outcome is decided by the order events are processed in.
type BombWindow struct {
	duration time.Duration
	clock    Clock

	open       bool
	generation int
	deadline   time.Time
	timer      Timer
}

// NewBombWindow returns a closed bomb window
func NewBombWindow(duration time.Duration, clock Clock) *BombWindow {
	if clock == nil {
		clock = systemClock{}
	}

	return &BombWindow{
		duration: duration,
		clock:    clock,
	}
}

// Open opens the window and schedules onExpire with the window's generation.
// A stale generation tells the receiver the expiry belongs to an earlier window.
func (b *BombWindow) Open(onExpire func(generation int)) {
	b.Close()

	b.generation++
	b.open = true
	b.deadline = b.clock.Now().Add(b.duration)

	generation := b.generation
	b.timer = b.clock.AfterFunc(b.duration, func() {
		onExpire(generation)
	})
}

// Close closes the window and cancels the pending expiry
func (b *BombWindow) Close() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	b.open = false
}

// Expire closes the window if generation matches the currently open window
func (b *BombWindow) Expire(generation int) bool {
	if !b.open || generation != b.generation {
		return false
	}

	b.timer = nil
	b.open = false
	return true
}

// IsOpen returns true if bombs may still be played on the closed trick
func (b *BombWindow) IsOpen() bool {
	return b.open
}

// Generation returns the generation of the latest window
func (b *BombWindow) Generation() int {
	return b.generation
}

// Remaining returns the time left before the window closes
func (b *BombWindow) Remaining() time.Duration {
	if !b.open {
		return 0
	}

	remaining := b.deadline.Sub(b.clock.Now())
	if remaining < 0 {
		return 0
	}

	return remaining
}
