// Package history records the outcome of every round and match played in a room
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tichu-server/pkg/playable"
	"tichu-server/pkg/tichu"
)

// ErrNotFound is returned when the room has no finished match
var ErrNotFound = errors.New("no record found")

// ErrDuplicateRound is returned when a round is saved twice
var ErrDuplicateRound = errors.New("round has already been saved")

// Game is the record of a finished match
type Game struct {
	RoomUUID    string          `json:"roomUuid"`
	Winners     []int64         `json:"winners"`
	FinalScores map[int64]int   `json:"finalScores"`
	Data        json.RawMessage `json:"data"`
	Ended       time.Time       `json:"ended"`
}

// Store persists round and match results
type Store interface {
	SaveRound(ctx context.Context, roomUUID string, result *tichu.RoundResult) error
	SaveGame(ctx context.Context, roomUUID string, details *playable.GameOverDetails) error

	// Rounds returns the rounds of the room in the order they were played
	Rounds(ctx context.Context, roomUUID string, start int64, rows int) ([]*tichu.RoundResult, error)
	Game(ctx context.Context, roomUUID string) (*Game, error)
}

func newGame(roomUUID string, details *playable.GameOverDetails) (*Game, error) {
	data, err := json.Marshal(details.Log)
	if err != nil {
		return nil, err
	}

	winners := details.Winners
	if winners == nil {
		winners = []int64{}
	}

	return &Game{
		RoomUUID:    roomUUID,
		Winners:     winners,
		FinalScores: details.FinalScores,
		Data:        data,
	}, nil
}

// roundsIn returns the round results carried in the log of the match
func roundsIn(details *playable.GameOverDetails) []*tichu.RoundResult {
	rounds, _ := details.Log.([]*tichu.RoundResult)
	return rounds
}
