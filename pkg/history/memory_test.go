package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"tichu-server/pkg/playable"
	"tichu-server/pkg/tichu"
)

const roomUUID = "5b0f6a9e-3c55-4b9a-8a0e-0c7f1f0e2d11"

func testRound(round int, scores [2]int) *tichu.RoundResult {
	return &tichu.RoundResult{
		Round:     round,
		Scores:    scores,
		Totals:    scores,
		DoubleWin: -1,
		OutOrder:  []int64{1, 2, 3},
		Bids:      []*tichu.BidResult{},
	}
}

// testStore runs the behaviour every store must have
func testStore(t *testing.T, store Store, roomUUID string) {
	a := assert.New(t)
	ctx := context.Background()

	rounds, err := store.Rounds(ctx, roomUUID, 0, 100)
	a.NoError(err)
	a.Empty(rounds)

	_, err = store.Game(ctx, roomUUID)
	a.ErrorIs(err, ErrNotFound)

	a.NoError(store.SaveRound(ctx, roomUUID, testRound(1, [2]int{70, 30})))
	a.NoError(store.SaveRound(ctx, roomUUID, testRound(2, [2]int{300, -200})))
	a.ErrorIs(store.SaveRound(ctx, roomUUID, testRound(2, [2]int{0, 0})), ErrDuplicateRound)

	rounds, err = store.Rounds(ctx, roomUUID, 0, 100)
	a.NoError(err)
	if a.Len(rounds, 2) {
		a.Equal(1, rounds[0].Round)
		a.Equal([2]int{300, -200}, rounds[1].Scores)
		a.Equal([]int64{1, 2, 3}, rounds[1].OutOrder)
	}

	rounds, err = store.Rounds(ctx, roomUUID, 1, 1)
	a.NoError(err)
	if a.Len(rounds, 1) {
		a.Equal(2, rounds[0].Round)
	}

	details := &playable.GameOverDetails{
		FinalScores: map[int64]int{1: 1070, 2: -170, 3: 1070, 4: -170},
		Winners:     []int64{1, 3},
		Log: []*tichu.RoundResult{
			testRound(1, [2]int{70, 30}),
			testRound(2, [2]int{300, -200}),
			testRound(3, [2]int{700, 0}),
		},
	}
	a.NoError(store.SaveGame(ctx, roomUUID, details))

	rounds, err = store.Rounds(ctx, roomUUID, 0, 100)
	a.NoError(err)
	a.Len(rounds, 3, "missing rounds are saved with the game")

	game, err := store.Game(ctx, roomUUID)
	a.NoError(err)
	a.Equal(roomUUID, game.RoomUUID)
	a.Equal([]int64{1, 3}, game.Winners)
	a.Equal(details.FinalScores, game.FinalScores)
	a.False(game.Ended.IsZero())
	a.Contains(string(game.Data), `"round":3`)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore(), roomUUID)
}

func TestMemoryStore_copiesRounds(t *testing.T) {
	a := assert.New(t)
	store := NewMemoryStore()

	result := testRound(1, [2]int{50, 50})
	a.NoError(store.SaveRound(context.Background(), roomUUID, result))
	result.Scores = [2]int{0, 0}

	rounds, _ := store.Rounds(context.Background(), roomUUID, 0, 0)
	a.Equal([2]int{50, 50}, rounds[0].Scores)

	rounds, _ = store.Rounds(context.Background(), roomUUID, 5, 10)
	a.Empty(rounds)
}
