package tichu

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"tichu-server/pkg/deck"
	"tichu-server/pkg/playable"
)

// Game is a match of Tichu: rounds are played until a team reaches the winning score
type Game struct {
	lock sync.Mutex

	options Options
	logger  logrus.FieldLogger
	logChan chan []*playable.LogMessage

	players    [playerCount]*Player
	idToPlayer map[int64]*Player
	teams      [2]*Team

	round   *Round
	results []*RoundResult

	winningTeam int
	over        bool
	closed      bool
}

// NewGame returns a new game for exactly four players. Players are seated in the order given,
// so the first and third player are partners.
func NewGame(logger logrus.FieldLogger, playerIDs []int64, opts Options) (*Game, error) {
	if len(playerIDs) != playerCount {
		return nil, PlayerCountError(len(playerIDs))
	}

	if opts.WinningScore <= 0 {
		return nil, fmt.Errorf("%w: winning score must be positive", ErrIllegalAction)
	}

	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}

	g := &Game{
		options:     opts,
		logger:      logger,
		logChan:     make(chan []*playable.LogMessage, 256),
		idToPlayer:  make(map[int64]*Player),
		teams:       newTeams(),
		results:     []*RoundResult{},
		winningTeam: -1,
	}

	for seat, id := range playerIDs {
		if _, ok := g.idToPlayer[id]; ok {
			return nil, fmt.Errorf("%w: player %d is seated twice", ErrIllegalAction, id)
		}

		p := &Player{PlayerID: id, seat: seat}
		g.players[seat] = p
		g.idToPlayer[id] = p
	}

	if err := g.nextRound(); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *Game) nextRound() error {
	number := len(g.results) + 1

	var seed int64
	if g.options.Seed > 0 {
		seed = g.options.Seed + int64(number-1)
	}

	d := deck.New()
	d.Shuffle(seed)
	hash := d.HashCode()

	window := NewBombWindow(g.options.BombWindow, g.options.Clock)
	round, err := newRound(number, g.players, d, window, nil)
	if err != nil {
		return err
	}

	round.onWindowExpire = g.onWindowExpire(round)
	g.round = round
	g.logger.WithFields(logrus.Fields{
		"round": number,
		"seed":  d.GetSeed(),
		"hash":  hash,
	}).Info("round started")
	g.sendLog(playable.SimpleLogMessageSlice(0, "Round %d has been dealt", number))
	return nil
}

// onWindowExpire returns the bomb window callback of the round
func (g *Game) onWindowExpire(round *Round) func(int) {
	return func(generation int) {
		g.dispatch(func() {
			g.expireBombWindow(round, generation)
		})
	}
}

func (g *Game) dispatch(f func()) {
	if g.options.Dispatch != nil {
		g.options.Dispatch(f)
		return
	}

	f()
}

// sendLog sends the log messages to the log channel. Messages are dropped if nobody is reading.
func (g *Game) sendLog(msgs []*playable.LogMessage) {
	select {
	case g.logChan <- msgs:
	default:
		g.logger.WithField("messages", len(msgs)).Warn("log channel is full")
	}
}

// act resolves the player and runs the action against the current round
func (g *Game) act(playerID int64, action func(r *Round, seat int) error) error {
	if g.closed {
		return ErrGameClosed
	}

	if g.over {
		return ErrGameIsOver
	}

	p, ok := g.idToPlayer[playerID]
	if !ok {
		return ErrUnknownPlayer
	}

	if g.round.faulted != nil {
		return ErrRoundFaulted
	}

	if err := action(g.round, p.seat); err != nil {
		return err
	}

	return g.afterAction()
}

// afterAction checks the round is consistent and moves to the next round when it ends
func (g *Game) afterAction() error {
	if err := g.round.verify(); err != nil {
		g.round.faulted = err
		g.round.close()
		g.logger.WithError(err).WithField("round", g.round.Number).Error("round faulted")
		return err
	}

	if g.round.phase == PhaseRoundEnd {
		return g.endRound()
	}

	return nil
}

func (g *Game) endRound() error {
	result := g.newRoundResult()
	g.results = append(g.results, result)

	g.logger.WithFields(logrus.Fields{
		"round":  result.Round,
		"scores": result.Scores,
		"totals": result.Totals,
	}).Info("round ended")
	g.sendLog(playable.SimpleLogMessageSlice(0, "Round %d is over: %d to %d", result.Round, result.Scores[0], result.Scores[1]))

	if team, over := MatchWinner(result.Totals, g.options.WinningScore); over {
		g.over = true
		g.winningTeam = team
		g.logger.WithField("team", team).Info("game over")
		g.sendLog(playable.SimpleLogMessageSlice(0, "Team %d wins %d to %d", team+1, result.Totals[team], result.Totals[1-team]))
		return nil
	}

	return g.nextRound()
}

func (g *Game) newRoundResult() *RoundResult {
	r := g.round
	score := r.score

	result := &RoundResult{
		Round:       r.Number,
		Scores:      score.Teams,
		DoubleWin:   score.DoubleWin,
		OutOrder:    make([]int64, r.outCount),
		Bids:        []*BidResult{},
		TrickPoints: [2]int{},
	}

	for seat, t := range r.tallies() {
		result.TrickPoints[teamOf(seat)] += t.TrickPoints
	}

	for _, p := range g.players {
		if p.isOut() {
			result.OutOrder[p.outOrder-1] = p.PlayerID
		}

		if p.hasBid() {
			result.Bids = append(result.Bids, &BidResult{
				PlayerID:  p.PlayerID,
				Bonus:     p.bonusBid,
				Succeeded: p.outOrder == 1,
			})
		}
	}

	for i, team := range g.teams {
		team.Score += score.Teams[i]
		result.Totals[i] = team.Score
	}

	return result
}

func (g *Game) expireBombWindow(round *Round, generation int) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.closed || g.round != round || round.faulted != nil {
		return
	}

	if !round.expireBombWindow(generation) {
		g.logger.WithField("generation", generation).Debug("ignoring stale bomb window expiry")
		return
	}

	if err := g.afterAction(); err != nil {
		g.logger.WithError(err).Error("could not close the bomb window")
	}
}

// DeclareBonusBid records the player's decision on the bonus bid, made on the first eight cards
func (g *Game) DeclareBonusBid(playerID int64, yes bool) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.act(playerID, func(r *Round, seat int) error {
		if err := r.declareBonusBid(seat, yes); err != nil {
			return err
		}

		if yes {
			g.sendLog(playable.SimpleLogMessageSlice(playerID, "{} called a Grand Tichu"))
		}

		return nil
	})
}

// DeclareStandardBid records a standard bid. It can be made any time before the player goes out.
func (g *Game) DeclareStandardBid(playerID int64, yes bool) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.act(playerID, func(r *Round, seat int) error {
		if err := r.declareStandardBid(seat, yes); err != nil {
			return err
		}

		if yes {
			g.sendLog(playable.SimpleLogMessageSlice(playerID, "{} called Tichu"))
		}

		return nil
	})
}

// SubmitExchange selects three cards to pass to the player's partner
func (g *Game) SubmitExchange(playerID int64, cardIDs []string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.act(playerID, func(r *Round, seat int) error {
		if err := r.submitExchange(seat, cardIDs); err != nil {
			return err
		}

		g.sendLog(playable.SimpleLogMessageSlice(playerID, "{} passed cards to their partner"))
		return nil
	})
}

// Play plays a combination. A bomb may be played out of turn.
func (g *Game) Play(playerID int64, cardIDs []string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.act(playerID, func(r *Round, seat int) error {
		if err := r.play(seat, cardIDs); err != nil {
			return err
		}

		g.logPlay(playerID, r.last)
		return nil
	})
}

// PlayBomb plays a bomb, in or out of turn
func (g *Game) PlayBomb(playerID int64, cardIDs []string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.act(playerID, func(r *Round, seat int) error {
		if err := r.playBomb(seat, cardIDs); err != nil {
			return err
		}

		g.logPlay(playerID, r.last)
		return nil
	})
}

func (g *Game) logPlay(playerID int64, last *lastPlay) {
	if last.combo == nil {
		g.sendLog(playable.CardsLogMessage(playerID, last.cards, "{} played the Dog"))
		return
	}

	g.sendLog(playable.CardsLogMessage(playerID, last.cards, "{} played %s", describe(last.combo)))
}

// Pass passes on the current trick
func (g *Game) Pass(playerID int64) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.act(playerID, func(r *Round, seat int) error {
		if err := r.pass(seat); err != nil {
			return err
		}

		g.sendLog(playable.SimpleLogMessageSlice(playerID, "{} passed"))
		return nil
	})
}

// DeclareWish declares the rank the player wishes for. Only allowed right after playing the Mah Jong.
func (g *Game) DeclareWish(playerID int64, rank int) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.act(playerID, func(r *Round, seat int) error {
		if err := r.declareWish(seat, rank); err != nil {
			return err
		}

		g.sendLog(playable.SimpleLogMessageSlice(playerID, "{} wished for a %s", rankName(rank)))
		return nil
	})
}

// Close cancels the pending bomb window. No actions are accepted afterwards.
func (g *Game) Close() {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.closed = true
	if g.round != nil {
		g.round.close()
	}
}

// RoundResults returns the results of every completed round
func (g *Game) RoundResults() []*RoundResult {
	g.lock.Lock()
	defer g.lock.Unlock()

	results := make([]*RoundResult, len(g.results))
	copy(results, g.results)
	return results
}

// IsOver returns the winning team once the match is over
func (g *Game) IsOver() (int, bool) {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.winningTeam, g.over
}

// Seat returns the seat of the player
func (g *Game) Seat(playerID int64) (int, bool) {
	p, ok := g.idToPlayer[playerID]
	if !ok {
		return -1, false
	}

	return p.seat, true
}

func describe(c *Combination) string {
	switch c.Kind {
	case KindSingle:
		return "a single"
	case KindPair:
		return "a pair"
	case KindTriple:
		return "three of a kind"
	case KindFullHouse:
		return "a full house"
	case KindStraight:
		return fmt.Sprintf("a %d card straight", c.Length)
	case KindPairSequence:
		return fmt.Sprintf("%d consecutive pairs", c.Length)
	case KindFourBomb:
		return "a four of a kind bomb"
	case KindStraightBomb:
		return fmt.Sprintf("a %d card straight flush bomb", c.Length)
	}

	return c.Kind.String()
}

func rankName(rank int) string {
	switch rank {
	case deck.Jack:
		return "Jack"
	case deck.Queen:
		return "Queen"
	case deck.King:
		return "King"
	case deck.Ace:
		return "Ace"
	}

	return fmt.Sprintf("%d", rank)
}
