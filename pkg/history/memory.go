package history

import (
	"context"
	"sync"
	"time"

	"tichu-server/pkg/playable"
	"tichu-server/pkg/tichu"
)

// MemoryStore keeps the history in memory
// It's used when no database is configured
type MemoryStore struct {
	lock   sync.RWMutex
	rounds map[string][]*tichu.RoundResult
	games  map[string]*Game
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rounds: make(map[string][]*tichu.RoundResult),
		games:  make(map[string]*Game),
	}
}

// SaveRound saves the result of a round
func (m *MemoryStore) SaveRound(ctx context.Context, roomUUID string, result *tichu.RoundResult) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.saveRound(roomUUID, result)
}

func (m *MemoryStore) saveRound(roomUUID string, result *tichu.RoundResult) error {
	for _, saved := range m.rounds[roomUUID] {
		if saved.Round == result.Round {
			return ErrDuplicateRound
		}
	}

	copied := *result
	m.rounds[roomUUID] = append(m.rounds[roomUUID], &copied)
	return nil
}

// SaveGame saves the result of a match, along with any of its rounds that weren't saved yet
func (m *MemoryStore) SaveGame(ctx context.Context, roomUUID string, details *playable.GameOverDetails) error {
	game, err := newGame(roomUUID, details)
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	for _, result := range roundsIn(details) {
		if err := m.saveRound(roomUUID, result); err != nil && err != ErrDuplicateRound {
			return err
		}
	}

	game.Ended = time.Now().UTC()
	m.games[roomUUID] = game
	return nil
}

// Rounds returns the saved rounds of the room
func (m *MemoryStore) Rounds(ctx context.Context, roomUUID string, start int64, rows int) ([]*tichu.RoundResult, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	saved := m.rounds[roomUUID]
	if start >= int64(len(saved)) {
		return []*tichu.RoundResult{}, nil
	}

	end := len(saved)
	if rows > 0 && int(start)+rows < end {
		end = int(start) + rows
	}

	rounds := make([]*tichu.RoundResult, end-int(start))
	copy(rounds, saved[start:end])
	return rounds, nil
}

// Game returns the finished match of the room
func (m *MemoryStore) Game(ctx context.Context, roomUUID string) (*Game, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	game, ok := m.games[roomUUID]
	if !ok {
		return nil, ErrNotFound
	}

	return game, nil
}
