package tichu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"tichu-server/pkg/deck"
)

// newTestRound returns a round in the playing phase with the given hands
func newTestRound(hands ...string) (*Round, *fakeClock) {
	clock := newFakeClock()
	r := &Round{
		Number:   1,
		deck:     &deck.Deck{},
		tricks:   []*Trick{},
		discards: deck.Hand{},
		turn:     -1,
		nextLead: -1,
		window:   NewBombWindow(3*time.Second, clock),
		wish:     newWishTracker(),
	}
	r.onWindowExpire = func(generation int) {
		r.expireBombWindow(generation)
	}

	for seat, hand := range hands {
		cards := deck.Hand(deck.CardsFromString(hand))
		cards.Sort()
		r.players[seat] = &Player{
			PlayerID:        int64(seat + 1),
			seat:            seat,
			hand:            cards,
			bonusBidDecided: true,
			exchanged:       true,
		}
		r.cardTotal += len(cards)
	}

	r.startPlaying()
	return r, clock
}

func cardIDs(cards []*deck.Card) []string {
	ids := make([]string, len(cards))
	for i, card := range cards {
		ids[i] = card.ID()
	}

	return ids
}

func TestRound_trickFlow(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("mahjong,3j,7j,9j", "2w,4w,9w,13w", "6p,8p,10p,12p", "2s,11s,14s,dragon")

	a.Equal(PhasePlaying, r.Phase())
	a.Equal(0, r.Turn(), "the Mah Jong leads")

	a.ErrorIs(r.pass(0), ErrCannotPassLead)
	a.ErrorIs(r.play(1, []string{"2w"}), ErrNotPlayersTurn)
	a.ErrorIs(r.play(0, []string{"3j", "7j"}), ErrNotACombination)
	a.ErrorIs(r.play(1, []string{"2w", "9w"}), ErrNotPlayersTurn, "the turn is checked before the combination")
	a.ErrorIs(r.play(0, []string{"3j", "7j"}), ErrIllegalCombination)
	a.ErrorIs(r.play(0, []string{"5s"}), ErrCardNotInHand)
	a.ErrorIs(r.play(0, []string{"3j", "3j"}), ErrDuplicateCard)
	a.ErrorIs(r.play(0, []string{"bogus"}), ErrIllegalAction)
	a.ErrorIs(r.play(0, []string{}), ErrNoCards)
	a.Len(r.players[0].hand, 4)
	a.True(r.trick.IsEmpty())

	a.NoError(r.play(0, []string{"mahjong"}))
	a.Equal(1, r.Turn())
	a.True(r.wish.CanDeclare(0))
	a.ErrorIs(r.declareWish(1, 5), ErrWishNotAllowed)
	a.ErrorIs(r.declareWish(0, 15), ErrInvalidWish)
	a.NoError(r.declareWish(0, 9))
	a.ErrorIs(r.declareWish(0, 8), ErrWishNotAllowed)

	a.NoError(r.play(1, []string{"2w"}))
	a.NoError(r.play(2, []string{"6p"}))
	a.ErrorIs(r.play(3, []string{"2s"}), ErrDoesNotBeat)
	a.Len(r.players[3].hand, 4)
	a.Len(r.trick.Plays, 3)
	a.NoError(r.pass(3))
	a.Equal(0, r.Turn())

	// four combinations complete the trick
	a.NoError(r.play(0, []string{"7j"}))
	a.Equal(PhaseBombWindow, r.Phase())
	a.Equal(-1, r.Turn())
	a.Nil(r.trick)
	a.Len(r.tricks, 1)
	a.Equal(0, r.tricks[0].Winner())
	a.Len(r.players[0].won, 1)
	a.True(r.window.IsOpen())

	a.ErrorIs(r.play(1, []string{"4w"}), ErrBombWindowOpen)
	a.ErrorIs(r.pass(1), ErrBombWindowOpen)

	clock.Advance(3 * time.Second)
	a.Equal(PhasePlaying, r.Phase())
	a.Equal(0, r.Turn())
	a.False(r.wish.Active().Fulfilled)

	a.NoError(r.play(0, []string{"9j"}))
	a.True(r.wish.Active().Fulfilled)
	a.NoError(r.verify())
}

func TestRound_dragonGivesLeadToOpponent(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("mahjong,dragon,3j", "14w,4w", "5p,6p", "7s,8s")

	a.NoError(r.play(0, []string{"mahjong"}))
	a.NoError(r.play(1, []string{"14w"}))
	a.NoError(r.pass(2))
	a.NoError(r.pass(3))
	a.Equal(0, r.Turn())
	a.NoError(r.play(0, []string{"dragon"}))
	a.NoError(r.pass(1))
	a.NoError(r.pass(2))
	a.NoError(r.pass(3))

	a.Equal(PhaseBombWindow, r.Phase())
	a.Equal(0, r.tricks[0].Winner())
	a.Equal(25, r.players[0].trickPoints(), "the winner keeps the Dragon's points")

	clock.Advance(3 * time.Second)
	a.Equal(1, r.Turn())
	a.NoError(r.verify())
}

func TestRound_dog(t *testing.T) {
	a := assert.New(t)
	r, _ := newTestRound("dog,3j,4j", "5w,6w", "7p,8p", "9s,10s")

	a.Equal(0, r.Turn())
	a.NoError(r.play(0, []string{"dog"}))
	a.Equal(PhasePlaying, r.Phase())
	a.Equal(2, r.Turn(), "the lead goes to the partner")
	a.Equal(2, r.trick.Lead)
	a.True(r.trick.IsEmpty())
	a.Len(r.tricks, 0)
	if a.Len(r.discards, 1) {
		a.True(r.discards[0].Is(deck.Dog))
	}

	a.NoError(r.verify())

	r, _ = newTestRound("3j,4j", "dog,5w", "7p,8p", "9s,10s")
	a.NoError(r.play(0, []string{"3j"}))
	a.ErrorIs(r.play(1, []string{"dog"}), ErrDogNotLead)
	a.ErrorIs(r.play(1, []string{"dog", "5w"}), ErrNotACombination)
	a.Len(r.players[1].hand, 2)
}

func TestRound_phoenix(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("14j,3j", "phoenix,4w", "dragon,5p", "6s,7s")

	a.NoError(r.play(0, []string{"14j"}))
	a.NoError(r.play(1, []string{"phoenix"}))
	a.Equal(14.5, r.trick.Top().Combination.Rank())
	a.NoError(r.play(2, []string{"dragon"}))
	a.NoError(r.pass(3))
	a.NoError(r.pass(0))
	a.NoError(r.pass(1))

	a.Equal(2, r.tricks[0].Winner())
	a.Equal(0, r.players[2].trickPoints())
	clock.Advance(3 * time.Second)
	a.Equal(3, r.Turn())

	r, _ = newTestRound("dragon,3j", "phoenix,4w", "5p,6p", "6s,7s")
	a.NoError(r.play(0, []string{"dragon"}))
	a.ErrorIs(r.play(1, []string{"phoenix"}), ErrDoesNotBeat)
}

func TestRound_bombWindow(t *testing.T) {
	hands := []string{"3j,4j", "5w,5j,5p,5s,2w", "6p,7p", "8s,9s"}
	bomb := []string{"5w", "5j", "5p", "5s"}

	newWindow := func(t *testing.T) (*Round, *fakeClock) {
		r, clock := newTestRound(hands...)
		assert.NoError(t, r.play(0, []string{"3j"}))
		assert.NoError(t, r.pass(1))
		assert.NoError(t, r.pass(2))
		assert.NoError(t, r.pass(3))
		assert.Equal(t, PhaseBombWindow, r.Phase())
		assert.Equal(t, 1, clock.pending())
		return r, clock
	}

	t.Run("bomb before expiry", func(t *testing.T) {
		a := assert.New(t)
		r, clock := newWindow(t)

		clock.Advance(2990 * time.Millisecond)
		a.Equal(PhaseBombWindow, r.Phase())
		a.Equal(10*time.Millisecond, r.window.Remaining())

		a.NoError(r.playBomb(1, bomb))
		a.Equal(PhasePlaying, r.Phase())
		a.False(r.window.IsOpen())
		a.Equal(0, clock.pending(), "the timer is cancelled")
		a.Equal(1, r.trick.Lead)
		a.Equal(2, r.Turn())

		clock.Advance(time.Second)
		a.Equal(PhasePlaying, r.Phase())
		a.Equal(2, r.Turn())
		a.Len(r.tricks, 1)
		a.NoError(r.verify())
	})

	t.Run("bomb after expiry", func(t *testing.T) {
		a := assert.New(t)
		r, clock := newWindow(t)

		clock.Advance(3 * time.Second)
		a.Equal(PhasePlaying, r.Phase())
		a.Equal(0, r.Turn())

		a.ErrorIs(r.playBomb(1, bomb), ErrBombWindowClosed)
		a.Len(r.players[1].hand, 5)

		// a bomb that beats the trick is still accepted out of turn
		a.NoError(r.play(0, []string{"4j"}))
		a.NoError(r.pass(1))
		a.Equal(2, r.Turn())
		a.NoError(r.playBomb(1, bomb))
		a.Equal(1, r.trick.Lead)
		a.Equal(2, r.Turn())
		a.Len(r.players[1].hand, 1)
		a.Equal("4j,5j,5w,5p,5s", r.trick.Cards().String())
		a.NoError(r.verify())
	})

	t.Run("not a bomb", func(t *testing.T) {
		a := assert.New(t)
		r, _ := newWindow(t)

		a.ErrorIs(r.playBomb(2, []string{"6p"}), ErrNotABomb)
		a.ErrorIs(r.play(2, []string{"6p"}), ErrBombWindowOpen)
		a.Equal(PhaseBombWindow, r.Phase())
	})
}

func TestRound_bombCarriesTrick(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("5j,10j", "2w,3w", "4p,6p", "9j,9w,9p,9s,13s")

	a.NoError(r.play(0, []string{"5j"}))
	a.NoError(r.play(3, []string{"9j", "9w", "9p", "9s"}))
	a.Equal(3, r.trick.Lead)
	a.Equal(5, r.trick.Points())
	a.Equal(0, r.Turn())

	// nothing but a higher bomb beats a bomb
	r2, _ := newTestRound("2j,2w,2p,2s", "3w", "4p", "5s")
	a.NoError(r2.play(0, []string{"2j", "2w", "2p", "2s"}))
	a.ErrorIs(r2.play(1, []string{"3w"}), ErrDoesNotBeat)

	a.NoError(r.pass(0))
	a.NoError(r.pass(1))
	a.NoError(r.pass(2))
	a.Equal(3, r.tricks[0].Winner())
	a.Equal(5, r.players[3].trickPoints())

	clock.Advance(3 * time.Second)
	a.Equal(3, r.Turn())
	a.NoError(r.verify())
}

func TestRound_exchange(t *testing.T) {
	a := assert.New(t)

	var players [playerCount]*Player
	for i := range players {
		players[i] = &Player{PlayerID: int64(i + 1), seat: i}
	}

	d := deck.New()
	d.Shuffle(7)

	r, err := newRound(1, players, d, NewBombWindow(3*time.Second, newFakeClock()), nil)
	a.NoError(err)
	a.Equal(PhaseDealingRemaining6, r.Phase())
	a.Equal(24, d.CardsLeft())
	for _, p := range r.players {
		a.Len(p.hand, 8)
	}

	a.ErrorIs(r.declareStandardBid(0, true), ErrWrongPhase)
	a.ErrorIs(r.submitExchange(0, cardIDs(r.players[0].hand[:3])), ErrWrongPhase)
	a.ErrorIs(r.play(0, cardIDs(r.players[0].hand[:1])), ErrWrongPhase)

	a.NoError(r.declareBonusBid(0, true))
	a.ErrorIs(r.declareBonusBid(0, false), ErrAlreadyBid)
	a.NoError(r.declareBonusBid(1, false))
	a.NoError(r.declareBonusBid(2, false))
	a.Equal(PhaseDealingRemaining6, r.Phase())
	a.NoError(r.declareBonusBid(3, false))

	a.Equal(PhaseCardExchange, r.Phase())
	a.Equal(0, d.CardsLeft())
	for _, p := range r.players {
		a.Len(p.hand, 14)
	}

	selected := make([][]string, playerCount)
	for i, p := range r.players {
		selected[i] = cardIDs(p.hand[:3])
	}

	a.ErrorIs(r.submitExchange(0, selected[0][:2]), ErrExchangeCardCount)
	a.ErrorIs(r.submitExchange(0, []string{selected[0][0], selected[0][0], selected[0][1]}), ErrDuplicateCard)
	a.ErrorIs(r.submitExchange(0, selected[1]), ErrCardNotInHand)

	a.NoError(r.submitExchange(0, selected[0]))
	a.NoError(r.submitExchange(1, selected[1]))
	a.ErrorIs(r.submitExchange(0, selected[0]), ErrAlreadyExchanged)
	a.NotNil(r.players[0].hand.Find(selected[0][0]), "cards stay until the partner has chosen")

	a.NoError(r.submitExchange(2, selected[2]))
	for _, id := range selected[0] {
		a.Nil(r.players[0].hand.Find(id))
		a.NotNil(r.players[2].hand.Find(id))
	}
	for _, id := range selected[2] {
		a.NotNil(r.players[0].hand.Find(id))
	}
	a.Equal(PhaseCardExchange, r.Phase())

	a.NoError(r.submitExchange(3, selected[3]))
	a.Equal(PhasePlaying, r.Phase())
	for _, p := range r.players {
		a.Len(p.hand, 14)
		if p.hand.Find(string(deck.MahJong)) != nil {
			a.Equal(p.seat, r.Turn())
		}
	}

	a.NoError(r.verify())

	a.ErrorIs(r.declareStandardBid(0, true), ErrAlreadyBid)
	a.NoError(r.declareStandardBid(1, true))
	a.ErrorIs(r.declareStandardBid(1, true), ErrAlreadyBid)
}

func TestRound_end(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("14j", "2w", "3p", "10s,5s")

	a.NoError(r.declareStandardBid(0, true))
	a.NoError(r.declareStandardBid(1, true))

	a.NoError(r.play(0, []string{"14j"}))
	a.Equal(1, r.players[0].outOrder)
	a.ErrorIs(r.declareStandardBid(0, true), ErrPlayerIsOut)
	a.NoError(r.pass(1))
	a.NoError(r.pass(2))
	a.NoError(r.pass(3))
	clock.Advance(3 * time.Second)

	// the player who went out doesn't lead
	a.Equal(1, r.Turn())
	a.NoError(r.play(1, []string{"2w"}))
	a.Equal(2, r.Turn())
	a.NoError(r.play(2, []string{"3p"}))

	a.Equal(PhaseRoundEnd, r.Phase())
	a.Equal(-1, r.Turn())
	a.Equal(0, clock.pending(), "no bomb window after the last trick")
	a.Equal(2, r.tricks[1].Winner())

	score := r.Score()
	if a.NotNil(score) {
		// the last player's cards go to the opponents
		a.Equal([2]int{115, -100}, score.Teams)
		a.Equal(-1, score.DoubleWin)
	}

	a.ErrorIs(r.play(3, []string{"5s"}), ErrWrongPhase)
	a.NoError(r.verify())
}

func TestRound_doubleWin(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("14j", "2w,3w", "13p", "5s,10s")

	a.NoError(r.play(0, []string{"14j"}))
	a.NoError(r.pass(1))
	a.NoError(r.pass(2))
	a.NoError(r.pass(3))
	clock.Advance(3 * time.Second)

	a.NoError(r.play(1, []string{"2w"}))
	a.NoError(r.play(2, []string{"13p"}))
	a.Equal(3, r.Turn())
	a.NoError(r.pass(3))
	a.Equal(1, r.Turn(), "players who are out are skipped")
	a.NoError(r.pass(1))
	a.Equal(2, r.tricks[1].Winner())
	clock.Advance(3 * time.Second)

	a.Equal(3, r.Turn())
	a.NoError(r.play(3, []string{"5s"}))
	a.ErrorIs(r.play(1, []string{"3w"}), ErrDoesNotBeat)
	a.NoError(r.pass(1))
	clock.Advance(3 * time.Second)

	a.NoError(r.play(3, []string{"10s"}))
	a.Equal(PhaseRoundEnd, r.Phase())

	score := r.Score()
	if a.NotNil(score) {
		a.Equal([2]int{25, -25}, score.Teams)
		a.Equal(0, score.DoubleWin)
	}
}

func TestRound_verify(t *testing.T) {
	a := assert.New(t)

	r, _ := newTestRound("3j", "4j", "5j", "6j")
	a.NoError(r.verify())
	r.players[1].hand = append(r.players[1].hand, deck.CardFromString("3j"))
	a.ErrorIs(r.verify(), ErrInvariantViolation)

	r, _ = newTestRound("3j", "4j", "5j", "6j")
	r.players[1].hand = deck.Hand{}
	a.ErrorIs(r.verify(), ErrInvariantViolation)
}

func TestRound_dragonLeadSkipsToOtherOpponent(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("mahjong,dragon,3j", "14w", "2p,5p,6p", "7s,8s")

	a.NoError(r.play(0, []string{"mahjong"}))
	a.NoError(r.play(1, []string{"14w"}))
	a.True(r.players[1].isOut())
	a.NoError(r.pass(2))
	a.NoError(r.pass(3))
	a.NoError(r.pass(0))

	clock.Advance(3 * time.Second)
	a.Equal(2, r.Turn(), "seat 1 is out, so the next player with cards leads")

	a.NoError(r.play(2, []string{"2p"}))
	a.NoError(r.pass(3))
	a.NoError(r.play(0, []string{"dragon"}))
	a.NoError(r.pass(2))
	a.NoError(r.pass(3))
	a.Equal(0, r.tricks[len(r.tricks)-1].Winner())

	clock.Advance(3 * time.Second)
	a.Equal(PhasePlaying, r.Phase())
	a.Equal(3, r.Turn(), "the Dragon hands the lead to the remaining opponent")
	a.Equal(1, teamOf(r.Turn()))
	a.NoError(r.verify())
}

func TestRound_wishEndsWithBombWindow(t *testing.T) {
	a := assert.New(t)
	r, clock := newTestRound("3j,4j", "5w,6w", "7p,8p", "9s,10s")

	a.NoError(r.play(0, []string{"3j"}))
	a.NoError(r.pass(1))
	a.NoError(r.pass(2))
	a.NoError(r.pass(3))
	a.Equal(PhaseBombWindow, r.Phase())

	r.wish.allow(0)
	clock.Advance(3 * time.Second)

	a.Equal(PhasePlaying, r.Phase())
	a.False(r.wish.CanDeclare(0))
	a.ErrorIs(r.declareWish(0, 9), ErrWishNotAllowed)
}
