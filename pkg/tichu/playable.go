package tichu

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"tichu-server/pkg/playable"
)

var _ playable.Playable = (*Game)(nil)
var _ playable.Player = (*Player)(nil)

// Name returns "Tichu"
func (g *Game) Name() string {
	return "Tichu"
}

// LogChan returns a channel for sending log messages
func (g *Game) LogChan() <-chan []*playable.LogMessage {
	return g.logChan
}

// Action performs an action
func (g *Game) Action(playerID int64, message *playable.PayloadIn) (playerResponse *playable.Response, updateState bool, err error) {
	log := g.logger.WithFields(logrus.Fields{
		"playerID": playerID,
		"action":   message.Action,
	})

	switch message.Action {
	case "bonusBid", "standardBid":
		call, ok := message.AdditionalData.GetBool("call")
		if !ok {
			return nil, false, fmt.Errorf("%w: %s requires a call", ErrIllegalAction, message.Action)
		}

		if message.Action == "bonusBid" {
			err = g.DeclareBonusBid(playerID, call)
		} else {
			err = g.DeclareStandardBid(playerID, call)
		}
	case "exchange":
		err = g.SubmitExchange(playerID, message.CardIDs())
	case "play":
		err = g.Play(playerID, message.CardIDs())
	case "bomb":
		err = g.PlayBomb(playerID, message.CardIDs())
	case "pass":
		err = g.Pass(playerID)
	case "wish":
		rank, ok := message.AdditionalData.GetInt("rank")
		if !ok {
			return nil, false, ErrInvalidWish
		}

		err = g.DeclareWish(playerID, rank)
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownAction, message.Action)
	}

	if err != nil {
		log.WithError(err).Debug("action rejected")
		return nil, false, err
	}

	log.Debug("action accepted")
	return playable.OK(message.Context), true, nil
}

// GetEndOfGameDetails returns the final scores once the match is over
func (g *Game) GetEndOfGameDetails() (*playable.GameOverDetails, bool) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if !g.over {
		return nil, false
	}

	scores := make(map[int64]int)
	winners := make([]int64, 0, 2)
	for _, p := range g.players {
		scores[p.PlayerID] = g.teams[p.Team()].Score
		if p.Team() == g.winningTeam {
			winners = append(winners, p.PlayerID)
		}
	}

	results := make([]*RoundResult, len(g.results))
	copy(results, g.results)

	return &playable.GameOverDetails{
		FinalScores: scores,
		Winners:     winners,
		Log:         results,
	}, true
}
