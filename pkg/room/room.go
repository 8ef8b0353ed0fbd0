package room

import (
	"errors"
	"time"
)

const seatCount = 4

// ErrRoomFull is returned when all four seats are taken
var ErrRoomFull = errors.New("all seats are taken")

// ErrRoomNotFound is returned for an unknown room
var ErrRoomNotFound = errors.New("room not found")

// ErrGameNotStarted is returned for game actions before four players are seated
var ErrGameNotStarted = errors.New("the game starts once four players are seated")

// Room is a table for four players
type Room struct {
	UUID    string    `json:"uuid"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Seats   []*Seat   `json:"seats"`
}

// Seat is a player sitting in a room
// Players are seated in order, so seats 0 and 2 play against seats 1 and 3
type Seat struct {
	Seat     int    `json:"seat"`
	PlayerID int64  `json:"playerId"`
	Name     string `json:"name"`
}

func (r *Room) clone() *Room {
	seats := make([]*Seat, len(r.Seats))
	for i, seat := range r.Seats {
		copied := *seat
		seats[i] = &copied
	}

	return &Room{
		UUID:    r.UUID,
		Name:    r.Name,
		Created: r.Created,
		Seats:   seats,
	}
}

func (r *Room) isFull() bool {
	return len(r.Seats) == seatCount
}

func (r *Room) playerIDs() []int64 {
	ids := make([]int64, len(r.Seats))
	for i, seat := range r.Seats {
		ids[i] = seat.PlayerID
	}

	return ids
}
