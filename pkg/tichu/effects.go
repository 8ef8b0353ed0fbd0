package tichu

import (
	"tichu-server/pkg/deck"
)

type effectKind int

const (
	effectNone effectKind = iota
	// the Mah Jong was played; the player may declare a wish
	effectWishEligible
	// the Dog was led; the lead moves to the partner
	effectLeadToPartner
	// the trick was won by the Dragon; the points stay with the winner, the lead moves to an opponent
	// of the winner, which seat holds
	effectLeadToOpponent
	// the trick was won normally; the winner leads
	effectLeadToWinner
)

// effect is the outcome of a play or a completed trick
type effect struct {
	kind effectKind
	// seat is the seat the effect applies to
	seat int
}

// playEffect returns the effect of seat playing the cards
func playEffect(seat int, cards []*deck.Card) effect {
	for _, card := range cards {
		switch card.Special {
		case deck.MahJong:
			return effect{kind: effectWishEligible, seat: seat}
		case deck.Dog:
			if len(cards) == 1 {
				return effect{kind: effectLeadToPartner, seat: partnerOf(seat)}
			}
		}
	}

	return effect{kind: effectNone, seat: seat}
}

// trickEffect returns who leads after winner takes the trick
func trickEffect(t *Trick, winner int) effect {
	if combo := t.winningCombination(); combo != nil && combo.IsDragonSingle() {
		return effect{kind: effectLeadToOpponent, seat: winner}
	}

	return effect{kind: effectLeadToWinner, seat: winner}
}

// apply applies the effect to the round and returns the seat that acts next, or -1 if the
// effect doesn't change who acts next
func (r *Round) apply(e effect) int {
	switch e.kind {
	case effectWishEligible:
		r.wish.allow(e.seat)
	case effectLeadToOpponent:
		return r.opponentOf(e.seat)
	case effectLeadToPartner, effectLeadToWinner:
		return r.activeFrom(e.seat)
	}

	return -1
}

// opponentOf returns the opponent after seat if they hold cards, then the other opponent.
// If both opponents are out, the next player holding cards leads.
func (r *Round) opponentOf(seat int) int {
	for _, opponent := range []int{(seat + 1) % playerCount, (seat + 3) % playerCount} {
		if !r.players[opponent].isOut() {
			return opponent
		}
	}

	return r.activeFrom(seat)
}
