package mux

import (
	"context"
	"errors"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"
	"tichu-server/internal/jwt"
	"tichu-server/pkg/room"
)

type ctxKey int

const (
	ctxDealerKey ctxKey = iota
	ctxPlayerIDKey
)

var errWrongRoom = errors.New("token is for a different room")

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	pitBoss *room.PitBoss

	// store for testing purposes
	roomRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string, pitBoss *room.PitBoss) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
	}

	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())
	}

	// requires an open room
	{
		this.roomRouter = this.Router.PathPrefix("/room/{uuid:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
		r := this.roomRouter
		r.Use(this.roomMiddleware)

		r.Methods(http.MethodGet).Path("").Handler(this.getRoomUUID())
		r.Methods(http.MethodPost).Path("/seat").Handler(this.postRoomUUIDSeat())
		r.Methods(http.MethodGet).Path("/history").Handler(this.getRoomUUIDHistory())
		r.Methods(http.MethodGet).Path("/game").Handler(this.getRoomUUIDGame())
		r.Methods(http.MethodGet).Path("/ws").Handler(this.seatMiddleware(this.getRoomUUIDWS()))
	}

	return this
}

func (m *Mux) roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dealer, ok := m.pitBoss.Dealer(strings.ToLower(gmux.Vars(r)["uuid"]))
		if !ok {
			writeJSONError(w, http.StatusNotFound, room.ErrRoomNotFound)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxDealerKey, dealer)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// seatMiddleware resolves the seat token of the request. A request without a token is a spectator.
// roomMiddleware must execute first
func (m *Mux) seatMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			if header := r.Header.Get("Authorization"); header != "" {
				authHeader := strings.Split(header, " ")
				if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
					writeJSONError(w, http.StatusUnauthorized, nil)
					return
				}

				token = authHeader[1]
			}
		}

		var playerID int64
		if token != "" {
			roomUUID, id, err := jwt.ValidSeat(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			dealer := r.Context().Value(ctxDealerKey).(*room.Dealer)
			if roomUUID != dealer.Room().UUID {
				writeJSONError(w, http.StatusForbidden, errWrongRoom)
				return
			}

			playerID = id
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerIDKey, playerID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
