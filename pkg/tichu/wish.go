package tichu

import (
	"tichu-server/pkg/deck"
)

// Wish is a rank requested by the player who played the Mah Jong
type Wish struct {
	Seat      int  `json:"seat"`
	Rank      int  `json:"rank"`
	Fulfilled bool `json:"fulfilled"`
}

// WishTracker records the wish and whether it has been fulfilled. It does not force anyone to play the wished rank.
type WishTracker struct {
	wish *Wish
	// eligible is the seat that just played the Mah Jong, or -1
	eligible int
}

func newWishTracker() *WishTracker {
	return &WishTracker{eligible: -1}
}

// allow lets the seat declare a wish until the next action
func (w *WishTracker) allow(seat int) {
	w.eligible = seat
}

func (w *WishTracker) disallow() {
	w.eligible = -1
}

// CanDeclare returns true if the seat may declare a wish right now
func (w *WishTracker) CanDeclare(seat int) bool {
	return w.eligible == seat && w.wish == nil
}

// Declare records the wish
func (w *WishTracker) Declare(seat, rank int) error {
	if !w.CanDeclare(seat) {
		return ErrWishNotAllowed
	}

	if rank < 2 || rank > deck.Ace {
		return ErrInvalidWish
	}

	w.wish = &Wish{Seat: seat, Rank: rank}
	w.eligible = -1
	return nil
}

// Check marks the wish as fulfilled if the cards contain the wished rank.
// The Phoenix fulfills any wish.
func (w *WishTracker) Check(cards []*deck.Card) bool {
	if w.wish == nil || w.wish.Fulfilled {
		return false
	}

	for _, card := range cards {
		if card.IsWild() || (card.IsNormal() && card.Rank == w.wish.Rank) {
			w.wish.Fulfilled = true
			return true
		}
	}

	return false
}

// Active returns the wish, or nil if none was declared
func (w *WishTracker) Active() *Wish {
	return w.wish
}
