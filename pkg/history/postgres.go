package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"tichu-server/pkg/db"
	"tichu-server/pkg/playable"
	"tichu-server/pkg/tichu"
)

const uniqueViolation = "23505"

// PostgresStore keeps the history in the rounds and games tables
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store backed by the database. A nil database uses db.Instance().
func NewPostgresStore(dbh *sql.DB) *PostgresStore {
	if dbh == nil {
		dbh = db.Instance()
	}

	return &PostgresStore{db: dbh}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func saveRound(ctx context.Context, ex execer, roomUUID string, result *tichu.RoundResult, ignoreDuplicate bool) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	query := `
INSERT INTO rounds (room_uuid, round, scores, totals, double_win, data)
VALUES ($1, $2, $3, $4, $5, $6)`
	if ignoreDuplicate {
		query += `
ON CONFLICT (room_uuid, round) DO NOTHING`
	}

	_, err = ex.ExecContext(ctx, query, roomUUID, result.Round, pq.Array(result.Scores[:]), pq.Array(result.Totals[:]), result.DoubleWin, data)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateRound
	}

	return err
}

// SaveRound saves the result of a round
func (p *PostgresStore) SaveRound(ctx context.Context, roomUUID string, result *tichu.RoundResult) error {
	return saveRound(ctx, p.db, roomUUID, result, false)
}

// SaveGame saves the result of a match, along with any of its rounds that weren't saved yet
func (p *PostgresStore) SaveGame(ctx context.Context, roomUUID string, details *playable.GameOverDetails) error {
	game, err := newGame(roomUUID, details)
	if err != nil {
		return err
	}

	finalScores, err := json.Marshal(game.FinalScores)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	commit := false
	defer func() {
		if !commit {
			rollback(tx)
		}
	}()

	for _, result := range roundsIn(details) {
		if err := saveRound(ctx, tx, roomUUID, result, true); err != nil {
			return err
		}
	}

	const query = `
INSERT INTO games (room_uuid, winners, final_scores, data)
VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, roomUUID, pq.Array(game.Winners), finalScores, []byte(game.Data)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	commit = true
	return nil
}

// Rounds returns the saved rounds of the room
func (p *PostgresStore) Rounds(ctx context.Context, roomUUID string, start int64, rows int) ([]*tichu.RoundResult, error) {
	const query = `
SELECT data
FROM rounds
WHERE room_uuid = $1
ORDER BY round
OFFSET $2
LIMIT $3`

	res, err := p.db.QueryContext(ctx, query, roomUUID, start, rows)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	rounds := make([]*tichu.RoundResult, 0)
	for res.Next() {
		result, err := roundByRow(res)
		if err != nil {
			return nil, err
		}

		rounds = append(rounds, result)
	}

	return rounds, res.Err()
}

func roundByRow(row db.Scanner) (*tichu.RoundResult, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		return nil, err
	}

	var result tichu.RoundResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Game returns the finished match of the room
func (p *PostgresStore) Game(ctx context.Context, roomUUID string) (*Game, error) {
	const query = `
SELECT room_uuid, winners, final_scores, data, ended
FROM games
WHERE room_uuid = $1`

	var game Game
	var winners pq.Int64Array
	var finalScores, data []byte

	row := p.db.QueryRowContext(ctx, query, roomUUID)
	if err := row.Scan(&game.RoomUUID, &winners, &finalScores, &data, &game.Ended); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if err := json.Unmarshal(finalScores, &game.FinalScores); err != nil {
		return nil, err
	}

	game.Winners = winners
	game.Data = data
	return &game, nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logrus.WithError(err).Error("could not rollback transaction")
	}
}
