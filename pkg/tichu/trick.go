package tichu

import (
	"tichu-server/pkg/deck"
)

// Play is a single turn in a trick: either a combination or a pass
type Play struct {
	Seat        int          `json:"seat"`
	Combination *Combination `json:"combination,omitempty"`
}

// Passed returns true if the player passed
func (p *Play) Passed() bool {
	return p.Combination == nil
}

// Trick is an ordered sequence of plays that ends when it's won
type Trick struct {
	Lead  int
	Plays []*Play

	// carried holds the cards of a trick that was interrupted by a bomb
	carried deck.Hand
	// passesNeeded is how many passes after the latest play close the trick
	passesNeeded int
	winner       int
	resolved     bool
}

// NewTrick returns an empty trick led by the seat
func NewTrick(lead int) *Trick {
	return &Trick{
		Lead:         lead,
		Plays:        []*Play{},
		passesNeeded: playerCount - 1,
		winner:       -1,
	}
}

// collapse starts a new trick that takes over the cards of the trick a bomb interrupted
func (t *Trick) collapse(bomber int) *Trick {
	next := NewTrick(bomber)
	next.carried = t.Cards()
	return next
}

// Top returns the latest non-pass play, or nil if nothing has been played
func (t *Trick) Top() *Play {
	for i := len(t.Plays) - 1; i >= 0; i-- {
		if !t.Plays[i].Passed() {
			return t.Plays[i]
		}
	}

	return nil
}

func (t *Trick) topCombination() *Combination {
	if top := t.Top(); top != nil {
		return top.Combination
	}

	return nil
}

// IsEmpty returns true if no combination has been played
func (t *Trick) IsEmpty() bool {
	return t.Top() == nil
}

// AddPlay adds a combination to the trick. The combination must beat the top of the trick.
func (t *Trick) AddPlay(seat int, combo *Combination) error {
	if t.resolved {
		return invariantViolation("trick is already complete")
	}

	top := t.topCombination()
	if !CanBeat(combo, top) {
		return ErrDoesNotBeat
	}

	t.Plays = append(t.Plays, &Play{
		Seat:        seat,
		Combination: combo.over(top),
	})

	return nil
}

// AddPass records a pass
func (t *Trick) AddPass(seat int) error {
	if t.resolved {
		return invariantViolation("trick is already complete")
	}

	if t.IsEmpty() {
		return ErrCannotPassLead
	}

	t.Plays = append(t.Plays, &Play{Seat: seat})
	return nil
}

// passesSinceTop returns the number of passes after the latest play
func (t *Trick) passesSinceTop() int {
	passes := 0
	for i := len(t.Plays) - 1; i >= 0 && t.Plays[i].Passed(); i-- {
		passes++
	}

	return passes
}

// playCount returns the number of non-pass plays
func (t *Trick) playCount() int {
	count := 0
	for _, play := range t.Plays {
		if !play.Passed() {
			count++
		}
	}

	return count
}

// IsComplete returns true when four combinations have been played, or when every
// other contender has passed since the latest play
func (t *Trick) IsComplete() bool {
	plays := t.playCount()
	if plays == playerCount {
		return true
	}

	return plays > 0 && t.passesSinceTop() >= t.passesNeeded
}

// Resolve determines the winner of the trick
func (t *Trick) Resolve() (int, error) {
	if !t.IsComplete() {
		return -1, invariantViolation("trick is not complete")
	}

	return t.close(), nil
}

// close awards the trick to the highest combination played, whether or not the trick is complete
func (t *Trick) close() int {
	if t.resolved {
		return t.winner
	}

	var best *Play
	for _, play := range t.Plays {
		if play.Passed() {
			continue
		}

		if best == nil || CanBeat(play.Combination, best.Combination) {
			best = play
		}
	}

	if best != nil {
		t.winner = best.Seat
	}

	t.resolved = true
	return t.winner
}

// Winner returns the seat that won the trick, or -1
func (t *Trick) Winner() int {
	return t.winner
}

// winningCombination returns the combination that won the trick
func (t *Trick) winningCombination() *Combination {
	return t.topCombination()
}

// Cards returns every card in the trick, including cards carried from an interrupted trick
func (t *Trick) Cards() deck.Hand {
	cards := t.carried.Clone()
	for _, play := range t.Plays {
		if !play.Passed() {
			cards = append(cards, play.Combination.Cards...)
		}
	}

	return cards
}

// Points returns the point value of the trick
func (t *Trick) Points() int {
	return t.Cards().Points()
}
