package tichu

import (
	"tichu-server/pkg/deck"
)

const (
	firstDeal    = 8
	secondDeal   = 6
	exchangeSize = 3
	// the round ends once this many players are out
	outToEndRound = playerCount - 1
)

// Round is one hand of Tichu, from the deal until three players are out.
// Every method validates before it mutates, so a rejected action leaves the round untouched.
type Round struct {
	Number int

	players  [playerCount]*Player
	deck     *deck.Deck
	phase    Phase
	trick    *Trick
	tricks   []*Trick
	discards deck.Hand

	turn     int
	nextLead int
	outCount int

	window *BombWindow
	wish   *WishTracker

	// last is the latest accepted play
	last *lastPlay

	// onWindowExpire is scheduled whenever the bomb window opens
	onWindowExpire func(generation int)

	score     *RoundScore
	faulted   error
	cardTotal int
}

type lastPlay struct {
	seat  int
	cards deck.Hand
	// combo is nil for the Dog
	combo *Combination
}

// newRound resets the players and deals the first eight cards
func newRound(number int, players [playerCount]*Player, d *deck.Deck, window *BombWindow, onWindowExpire func(int)) (*Round, error) {
	r := &Round{
		Number:         number,
		players:        players,
		deck:           d,
		phase:          PhaseDealingFirst8,
		tricks:         []*Trick{},
		discards:       deck.Hand{},
		turn:           -1,
		nextLead:       -1,
		window:         window,
		wish:           newWishTracker(),
		onWindowExpire: onWindowExpire,
		cardTotal:      d.CardsLeft(),
	}

	for _, p := range players {
		p.newRound()
	}

	if err := r.dealFirst8(); err != nil {
		return nil, err
	}

	return r, nil
}

// Phase returns the current phase
func (r *Round) Phase() Phase {
	return r.phase
}

// Turn returns the seat whose turn it is, or -1
func (r *Round) Turn() int {
	if r.phase != PhasePlaying {
		return -1
	}

	return r.turn
}

// Score returns the round score once the round has ended
func (r *Round) Score() *RoundScore {
	return r.score
}

func (r *Round) hands() []*deck.Hand {
	hands := make([]*deck.Hand, playerCount)
	for i, p := range r.players {
		hands[i] = &p.hand
	}

	return hands
}

func (r *Round) sortHands() {
	for _, p := range r.players {
		p.hand.Sort()
	}
}

func (r *Round) dealFirst8() error {
	if r.phase != PhaseDealingFirst8 {
		return ErrWrongPhase
	}

	if r.deck.CardsLeft() != deck.Size {
		return invariantViolation("expected %d cards in the deck, found %d", deck.Size, r.deck.CardsLeft())
	}

	if err := r.deck.Deal(firstDeal, r.hands()); err != nil {
		return invariantViolation("could not deal the first cards: %v", err)
	}

	r.sortHands()
	r.phase = PhaseDealingRemaining6
	return nil
}

func (r *Round) dealRemaining6() error {
	if err := r.deck.Deal(secondDeal, r.hands()); err != nil {
		return invariantViolation("could not deal the remaining cards: %v", err)
	}

	r.sortHands()
	r.phase = PhaseCardExchange
	return nil
}

// nextActive returns the next seat after from that still holds cards, or -1
func (r *Round) nextActive(from int) int {
	for i := 1; i <= playerCount; i++ {
		seat := (from + i) % playerCount
		if !r.players[seat].isOut() {
			return seat
		}
	}

	return -1
}

// activeFrom returns seat if it still holds cards, otherwise the next seat that does
func (r *Round) activeFrom(seat int) int {
	if !r.players[seat].isOut() {
		return seat
	}

	return r.nextActive(seat)
}

// contenders returns the number of players other than seat still holding cards
func (r *Round) contenders(seat int) int {
	count := 0
	for i, p := range r.players {
		if i != seat && !p.isOut() {
			count++
		}
	}

	return count
}

// cardsInHand resolves the card ids against the player's hand
func (r *Round) cardsInHand(p *Player, ids []string) ([]*deck.Card, error) {
	if len(ids) == 0 {
		return nil, ErrNoCards
	}

	seen := make(map[string]bool)
	cards := make([]*deck.Card, 0, len(ids))
	for _, id := range ids {
		card, err := deck.ParseCard(id)
		if err != nil {
			return nil, ErrCardNotInHand
		}

		if seen[card.ID()] {
			return nil, ErrDuplicateCard
		}
		seen[card.ID()] = true

		held := p.hand.Find(card.ID())
		if held == nil {
			return nil, ErrCardNotInHand
		}

		cards = append(cards, held)
	}

	return cards, nil
}

func (r *Round) declareBonusBid(seat int, yes bool) error {
	if r.phase != PhaseDealingRemaining6 {
		return ErrWrongPhase
	}

	p := r.players[seat]
	if p.bonusBidDecided {
		return ErrAlreadyBid
	}

	p.bonusBidDecided = true
	p.bonusBid = yes

	for _, p := range r.players {
		if !p.bonusBidDecided {
			return nil
		}
	}

	return r.dealRemaining6()
}

func (r *Round) declareStandardBid(seat int, yes bool) error {
	switch r.phase {
	case PhaseCardExchange, PhasePlaying, PhaseBombWindow:
	default:
		return ErrWrongPhase
	}

	p := r.players[seat]
	if p.isOut() {
		return ErrPlayerIsOut
	}

	if p.hasBid() {
		return ErrAlreadyBid
	}

	p.standardBid = yes
	return nil
}

func (r *Round) submitExchange(seat int, ids []string) error {
	if r.phase != PhaseCardExchange {
		return ErrWrongPhase
	}

	p := r.players[seat]
	if p.exchanged || p.exchange != nil {
		return ErrAlreadyExchanged
	}

	if len(ids) != exchangeSize {
		return ErrExchangeCardCount
	}

	cards, err := r.cardsInHand(p, ids)
	if err != nil {
		return err
	}

	p.exchange = cards

	partner := r.players[partnerOf(seat)]
	if partner.exchange != nil && !partner.exchanged {
		swapExchange(p, partner)
	}

	for _, p := range r.players {
		if !p.exchanged {
			return nil
		}
	}

	r.startPlaying()
	return nil
}

// swapExchange moves each partner's selected cards into the other's hand
func swapExchange(a, b *Player) {
	a.hand.Remove(a.exchange)
	b.hand.Remove(b.exchange)
	a.hand.AddCards(b.exchange)
	b.hand.AddCards(a.exchange)
	a.hand.Sort()
	b.hand.Sort()
	a.exchanged = true
	b.exchanged = true
}

// startPlaying gives the first lead to the holder of the Mah Jong
func (r *Round) startPlaying() {
	lead := 0
	for seat, p := range r.players {
		if p.hand.Find(string(deck.MahJong)) != nil {
			lead = seat
			break
		}
	}

	r.startTrick(lead)
}

func (r *Round) startTrick(lead int) {
	r.phase = PhasePlaying
	r.trick = NewTrick(lead)
	r.turn = lead
}

func (r *Round) play(seat int, ids []string) error {
	if r.phase != PhasePlaying && r.phase != PhaseBombWindow {
		return ErrWrongPhase
	}

	p := r.players[seat]
	if p.isOut() {
		return ErrPlayerIsOut
	}

	cards, err := r.cardsInHand(p, ids)
	if err != nil {
		return err
	}

	if len(cards) == 1 && cards[0].Is(deck.Dog) {
		return r.playDog(seat, cards)
	}

	combo, err := Detect(cards)
	if err == nil && combo.IsBomb() {
		return r.playBombCombination(seat, combo)
	}

	// only bombs may be played out of turn
	if r.phase == PhaseBombWindow {
		return ErrBombWindowOpen
	}

	if r.turn != seat {
		return ErrNotPlayersTurn
	}

	if err != nil {
		return err
	}

	if err := r.trick.AddPlay(seat, combo); err != nil {
		return err
	}

	r.afterPlay(seat, cards, combo)
	return nil
}

func (r *Round) playDog(seat int, cards []*deck.Card) error {
	if r.phase == PhaseBombWindow {
		return ErrBombWindowOpen
	}

	if r.turn != seat {
		return ErrNotPlayersTurn
	}

	if !r.trick.IsEmpty() {
		return ErrDogNotLead
	}

	r.wish.disallow()
	p := r.players[seat]
	p.hand.Remove(cards)
	r.discards.AddCards(cards)
	r.last = &lastPlay{seat: seat, cards: cards}
	r.markOutIfEmpty(p)

	if r.outCount >= outToEndRound {
		r.end()
		return nil
	}

	r.startTrick(r.apply(playEffect(seat, cards)))
	return nil
}

func (r *Round) playBomb(seat int, ids []string) error {
	if r.phase != PhasePlaying && r.phase != PhaseBombWindow {
		return ErrWrongPhase
	}

	p := r.players[seat]
	if p.isOut() {
		return ErrPlayerIsOut
	}

	cards, err := r.cardsInHand(p, ids)
	if err != nil {
		return err
	}

	combo, err := Detect(cards)
	if err != nil {
		return err
	}

	if !combo.IsBomb() {
		return ErrNotABomb
	}

	return r.playBombCombination(seat, combo)
}

// playBombCombination plays a bomb out of turn. A bomb is legal during an open bomb window,
// as the lead of the player whose turn it is, or whenever it beats the top of the trick.
func (r *Round) playBombCombination(seat int, combo *Combination) error {
	switch {
	case r.phase == PhaseBombWindow:
		r.window.Close()
		r.trick = NewTrick(seat)
	case r.trick.IsEmpty():
		if r.turn != seat {
			return ErrBombWindowClosed
		}
	default:
		if !CanBeat(combo, r.trick.topCombination()) {
			if r.turn == seat {
				return ErrDoesNotBeat
			}

			return ErrBombWindowClosed
		}

		r.trick = r.trick.collapse(seat)
	}

	if err := r.trick.AddPlay(seat, combo); err != nil {
		return invariantViolation("bomb was not accepted by a fresh trick: %v", err)
	}

	r.phase = PhasePlaying
	r.afterPlay(seat, combo.Cards, combo)
	return nil
}

// afterPlay removes the played cards and moves the trick along
func (r *Round) afterPlay(seat int, cards []*deck.Card, combo *Combination) {
	p := r.players[seat]
	r.last = &lastPlay{seat: seat, cards: cards, combo: combo}

	r.wish.disallow()
	p.hand.Remove(cards)
	r.wish.Check(cards)
	r.apply(playEffect(seat, cards))
	r.markOutIfEmpty(p)

	if r.outCount >= outToEndRound {
		r.closeTrick(r.trick.close())
		return
	}

	r.advance(seat)
}

func (r *Round) pass(seat int) error {
	switch r.phase {
	case PhasePlaying:
	case PhaseBombWindow:
		return ErrBombWindowOpen
	default:
		return ErrWrongPhase
	}

	if r.turn != seat {
		return ErrNotPlayersTurn
	}

	if err := r.trick.AddPass(seat); err != nil {
		return err
	}

	r.wish.disallow()
	r.advance(seat)
	return nil
}

// advance closes the trick if it's complete, otherwise moves the turn to the next player holding cards
func (r *Round) advance(from int) {
	top := r.trick.Top()
	r.trick.passesNeeded = r.contenders(top.Seat)

	if r.trick.IsComplete() {
		winner, _ := r.trick.Resolve()
		r.closeTrick(winner)
		return
	}

	r.turn = r.nextActive(from)
}

func (r *Round) markOutIfEmpty(p *Player) {
	if len(p.hand) > 0 || p.isOut() {
		return
	}

	r.outCount++
	p.outOrder = r.outCount
}

// closeTrick gives the trick to the winner and opens the bomb window
func (r *Round) closeTrick(winner int) {
	t := r.trick
	r.players[winner].won = append(r.players[winner].won, t)
	r.tricks = append(r.tricks, t)
	r.trick = nil
	r.turn = -1

	if r.outCount >= outToEndRound {
		r.end()
		return
	}

	r.nextLead = r.apply(trickEffect(t, winner))
	r.phase = PhaseBombWindow
	r.window.Open(r.onWindowExpire)
}

// expireBombWindow closes the bomb window and starts the next trick. It returns false
// if the expiry belongs to a window that has already closed.
func (r *Round) expireBombWindow(generation int) bool {
	if r.phase != PhaseBombWindow || !r.window.Expire(generation) {
		return false
	}

	r.wish.disallow()
	r.startTrick(r.nextLead)
	return true
}

func (r *Round) declareWish(seat, rank int) error {
	return r.wish.Declare(seat, rank)
}

func (r *Round) end() {
	r.window.Close()
	r.phase = PhaseRoundEnd
	r.turn = -1

	score := CalculateRoundScore(r.tallies())
	r.score = &score
}

// tallies returns each seat's contribution to the score. The last player's won tricks go
// to the first player out, and the cards left in their hand go to the opponents.
func (r *Round) tallies() [playerCount]Tally {
	var tallies [playerCount]Tally
	first, last := -1, -1
	for seat, p := range r.players {
		tallies[seat] = Tally{
			TrickPoints: p.trickPoints(),
			StandardBid: p.standardBid,
			BonusBid:    p.bonusBid,
			OutOrder:    p.outOrder,
		}

		if p.outOrder == 1 {
			first = seat
		} else if !p.isOut() {
			last = seat
		}
	}

	if first >= 0 && last >= 0 {
		tallies[first].TrickPoints += tallies[last].TrickPoints
		tallies[last].TrickPoints = 0
		tallies[(last+1)%playerCount].TrickPoints += r.players[last].hand.Points()
	}

	return tallies
}

// verify checks that every card is accounted for exactly once
func (r *Round) verify() error {
	seen := make(map[string]bool, r.cardTotal)
	count := 0
	check := func(cards deck.Hand, where string) error {
		for _, card := range cards {
			if seen[card.ID()] {
				return invariantViolation("card %s found twice (%s)", card.ID(), where)
			}

			seen[card.ID()] = true
			count++
		}

		return nil
	}

	if err := check(r.deck.Cards, "deck"); err != nil {
		return err
	}

	for _, p := range r.players {
		if err := check(p.hand, "hand"); err != nil {
			return err
		}
	}

	for _, t := range r.tricks {
		if err := check(t.Cards(), "tricks"); err != nil {
			return err
		}
	}

	if r.trick != nil {
		if err := check(r.trick.Cards(), "trick"); err != nil {
			return err
		}
	}

	if err := check(r.discards, "discards"); err != nil {
		return err
	}

	if count != r.cardTotal {
		return invariantViolation("expected %d cards, found %d", r.cardTotal, count)
	}

	return nil
}

// close cancels the pending bomb window
func (r *Round) close() {
	r.window.Close()
}
