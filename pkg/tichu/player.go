package tichu

import (
	"tichu-server/pkg/deck"
)

const playerCount = 4

// Player is a seated player in a game of Tichu
type Player struct {
	PlayerID int64
	seat     int

	hand deck.Hand

	bonusBid        bool
	bonusBidDecided bool
	standardBid     bool

	// exchange holds the cards selected for the partner until the exchange executes
	exchange  deck.Hand
	exchanged bool

	// outOrder is 1 for the first player to empty their hand, 0 while still holding cards
	outOrder int
	won      []*Trick
}

// GetPlayerID returns the player's ID
func (p *Player) GetPlayerID() int64 {
	return p.PlayerID
}

// Seat returns the player's seat, 0 through 3
func (p *Player) Seat() int {
	return p.seat
}

// Team returns the player's team. Seats 0 and 2 are team 0, seats 1 and 3 are team 1.
func (p *Player) Team() int {
	return teamOf(p.seat)
}

func (p *Player) newRound() {
	p.hand = deck.Hand{}
	p.bonusBid = false
	p.bonusBidDecided = false
	p.standardBid = false
	p.exchange = nil
	p.exchanged = false
	p.outOrder = 0
	p.won = nil
}

func (p *Player) isOut() bool {
	return p.outOrder > 0
}

func (p *Player) hasBid() bool {
	return p.bonusBid || p.standardBid
}

// trickPoints returns the points of every trick the player won
func (p *Player) trickPoints() int {
	points := 0
	for _, t := range p.won {
		points += t.Points()
	}

	return points
}

func teamOf(seat int) int {
	return seat % 2
}

func partnerOf(seat int) int {
	return (seat + 2) % playerCount
}
