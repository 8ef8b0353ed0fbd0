package mux

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/sirupsen/logrus"
	"tichu-server/internal/jwt"
	"tichu-server/pkg/room"
)

type postRoomPayload struct {
	Name string `json:"name"`
}

func (m *Mux) postRoom() http.HandlerFunc {
	var wordChar = regexp.MustCompile(`\w`)
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !wordChar.MatchString(pp.Name) || len(pp.Name) < 3 || len(pp.Name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("name must be 3-40 characters"))
			return
		}

		writeJSON(w, http.StatusCreated, m.pitBoss.CreateRoom(pp.Name))
	}
}

func (m *Mux) getRoomUUID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dealer := r.Context().Value(ctxDealerKey).(*room.Dealer)
		writeJSON(w, http.StatusOK, dealer.Room())
	})
}

type postSeatPayload struct {
	Name string `json:"name"`
}

type postSeatResponse struct {
	*room.Seat
	Token string `json:"token"`
}

func (m *Mux) postRoomUUIDSeat() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pp postSeatPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if len(pp.Name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("name cannot be longer than 40 characters"))
			return
		}

		dealer := r.Context().Value(ctxDealerKey).(*room.Dealer)
		seat, err := dealer.SitDown(pp.Name)
		if err != nil {
			if errors.Is(err, room.ErrRoomFull) {
				writeJSONError(w, http.StatusConflict, err)
			} else {
				writeJSONError(w, http.StatusInternalServerError, err)
			}

			return
		}

		token, err := jwt.Sign(dealer.Room().UUID, seat.PlayerID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		logrus.WithFields(logrus.Fields{
			"remoteAddr": remoteAddr(r),
			"playerID":   seat.PlayerID,
		}).Debug("issued seat token")

		writeJSON(w, http.StatusCreated, postSeatResponse{
			Seat:  seat,
			Token: token,
		})
	})
}

func (m *Mux) getRoomUUIDHistory() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		dealer := r.Context().Value(ctxDealerKey).(*room.Dealer)
		rounds, err := dealer.History(r.Context(), start, rows)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, rounds)
	})
}

func (m *Mux) getRoomUUIDGame() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dealer := r.Context().Value(ctxDealerKey).(*room.Dealer)
		game, err := dealer.Game(r.Context())
		if err != nil {
			writeMaybeNotFoundError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, game)
	})
}
