package room

import (
	"tichu-server/pkg/playable"
)

type clientStatePlayer struct {
	*Seat
	IsConnected bool `json:"isConnected"`
}

func newErrorResponse(ctx string, err error) *playable.Response {
	return &playable.Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}
}
