package tichu

import "time"

// Options are options for creating a new game of Tichu
type Options struct {
	// WinningScore ends the match once a team reaches it
	WinningScore int
	// BombWindow is how long bombs can still be played after a trick closes
	BombWindow time.Duration
	// Seed is the shuffle seed of the first round. Zero picks a random seed for every round.
	Seed int64
	// Clock defaults to the system clock
	Clock Clock
	// Dispatch runs a bomb-window expiry. A transport sets this to post the expiry into
	// the same serialized stream as player actions. Defaults to calling the function directly.
	Dispatch func(func())
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		WinningScore: 1000,
		BombWindow:   3 * time.Second,
	}
}
