package tichu

import (
	"tichu-server/pkg/deck"
	"tichu-server/pkg/playable"
)

// RoundResult is the record of a completed round
type RoundResult struct {
	Round int `json:"round"`
	// Scores is what each team scored this round, including bids and the double win
	Scores [2]int `json:"scores"`
	// Totals is each team's cumulative score after this round
	Totals [2]int `json:"totals"`
	// TrickPoints is the card points each team collected
	TrickPoints [2]int `json:"trickPoints"`
	// DoubleWin is the team that went out first and second, or -1
	DoubleWin int          `json:"doubleWin"`
	OutOrder  []int64      `json:"outOrder"`
	Bids      []*BidResult `json:"bids"`
}

// BidResult is the outcome of a bid
type BidResult struct {
	PlayerID int64 `json:"playerId"`
	// Bonus is true for a bonus bid made on the first eight cards
	Bonus     bool `json:"bonus"`
	Succeeded bool `json:"succeeded"`
}

// GameState is the overall game state
// This is safe for all players to see
type GameState struct {
	Phase       Phase             `json:"phase"`
	Round       int               `json:"round"`
	Seats       []*GameStateSeat  `json:"seats"`
	Teams       [2]*Team          `json:"teams"`
	CurrentTurn int64             `json:"currentTurn"`
	Trick       *GameStateTrick   `json:"trick"`
	Tricks      []*GameStateTrick `json:"tricks"`
	Wish        *Wish             `json:"wish"`
	BombWindow  *GameStateWindow  `json:"bombWindow"`
	LastRound   *RoundResult      `json:"lastRound"`
	IsGameOver  bool              `json:"isGameOver"`
	WinningTeam int               `json:"winningTeam"`
}

// GameStateSeat is the state of an individual player
// This is safe for all players to see
type GameStateSeat struct {
	PlayerID        int64 `json:"playerId"`
	Seat            int   `json:"seat"`
	Team            int   `json:"team"`
	CardsInHand     int   `json:"cardsInHand"`
	BonusBid        bool  `json:"bonusBid"`
	BonusBidDecided bool  `json:"bonusBidDecided"`
	StandardBid     bool  `json:"standardBid"`
	Exchanged       bool  `json:"exchanged"`
	OutOrder        int   `json:"outOrder"`
	TricksWon       int   `json:"tricksWon"`
	TrickPoints     int   `json:"trickPoints"`
}

// GameStateTrick summarizes a trick
type GameStateTrick struct {
	Lead   int64            `json:"lead"`
	Plays  []*GameStatePlay `json:"plays"`
	Winner int64            `json:"winner"`
	Points int              `json:"points"`
}

// GameStatePlay is a single play in a trick
type GameStatePlay struct {
	PlayerID    int64        `json:"playerId"`
	Passed      bool         `json:"passed"`
	Combination *Combination `json:"combination,omitempty"`
}

// GameStateWindow is the state of the bomb window
type GameStateWindow struct {
	Open            bool  `json:"open"`
	RemainingMillis int64 `json:"remainingMillis"`
}

// Response is the response format for this game
type Response struct {
	GameState *GameState `json:"gameState"`
	// Data below is player specific, and must only be shown to the intended player
	Seat     int          `json:"seat"`
	Hand     []*deck.Card `json:"hand"`
	Exchange []*deck.Card `json:"exchange"`
	CanWish  bool         `json:"canWish"`
}

func (g *Game) playerID(seat int) int64 {
	if seat < 0 {
		return 0
	}

	return g.players[seat].PlayerID
}

func (g *Game) trickState(t *Trick) *GameStateTrick {
	plays := make([]*GameStatePlay, len(t.Plays))
	for i, play := range t.Plays {
		plays[i] = &GameStatePlay{
			PlayerID:    g.playerID(play.Seat),
			Passed:      play.Passed(),
			Combination: play.Combination,
		}
	}

	return &GameStateTrick{
		Lead:   g.playerID(t.Lead),
		Plays:  plays,
		Winner: g.playerID(t.Winner()),
		Points: t.Points(),
	}
}

func (g *Game) getGameState() *GameState {
	r := g.round

	seats := make([]*GameStateSeat, playerCount)
	for i, p := range g.players {
		seats[i] = &GameStateSeat{
			PlayerID:        p.PlayerID,
			Seat:            p.seat,
			Team:            p.Team(),
			CardsInHand:     len(p.hand),
			BonusBid:        p.bonusBid,
			BonusBidDecided: p.bonusBidDecided,
			StandardBid:     p.standardBid,
			Exchanged:       p.exchanged,
			OutOrder:        p.outOrder,
			TricksWon:       len(p.won),
			TrickPoints:     p.trickPoints(),
		}
	}

	var trick *GameStateTrick
	if r.trick != nil {
		trick = g.trickState(r.trick)
	}

	tricks := make([]*GameStateTrick, len(r.tricks))
	for i, t := range r.tricks {
		tricks[i] = g.trickState(t)
	}

	var lastRound *RoundResult
	if n := len(g.results); n > 0 {
		lastRound = g.results[n-1]
	}

	teams := [2]*Team{}
	for i, team := range g.teams {
		copied := *team
		teams[i] = &copied
	}

	var wish *Wish
	if w := r.wish.Active(); w != nil {
		copied := *w
		wish = &copied
	}

	return &GameState{
		Phase:       r.phase,
		Round:       r.Number,
		Seats:       seats,
		Teams:       teams,
		CurrentTurn: g.playerID(r.Turn()),
		Trick:       trick,
		Tricks:      tricks,
		Wish:        wish,
		BombWindow: &GameStateWindow{
			Open:            r.window.IsOpen(),
			RemainingMillis: r.window.Remaining().Milliseconds(),
		},
		LastRound:   lastRound,
		IsGameOver:  g.over,
		WinningTeam: g.winningTeam,
	}
}

// GetState returns the public state plus the private state of the player.
// A player who is not seated gets the public state only.
func (g *Game) GetState(playerID int64) *Response {
	g.lock.Lock()
	defer g.lock.Unlock()

	res := &Response{
		GameState: g.getGameState(),
		Seat:      -1,
	}

	if p, ok := g.idToPlayer[playerID]; ok {
		res.Seat = p.seat
		res.Hand = p.hand.Clone()
		if p.exchange != nil {
			res.Exchange = p.exchange.Clone()
		}
		res.CanWish = g.round.wish.CanDeclare(p.seat)
	}

	return res
}

// GetPlayerState returns the state for the given player
func (g *Game) GetPlayerState(playerID int64) (*playable.Response, error) {
	return &playable.Response{
		Key:   "game",
		Value: "tichu",
		Data:  g.GetState(playerID),
	}, nil
}
