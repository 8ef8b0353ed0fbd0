package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tichu-server/internal/util"
	"tichu-server/pkg/history"
	"tichu-server/pkg/playable"
	"tichu-server/pkg/tichu"
)

type state int

const (
	stateClientEvent state = iota
	stateGameEvent
	stateGameEnded
)

// Dealer runs the game of a single room
// Player actions and bomb window timeouts are executed one at a time in the run loop,
// so the game sees a single ordered stream of events.
type Dealer struct {
	pitBoss *PitBoss
	store   history.Store
	options tichu.Options
	log     logrus.FieldLogger

	// lock guards room, clients and ended
	lock    sync.RWMutex
	room    *Room
	clients map[*Client]bool
	ended   bool

	// the following must only be accessed from the run loop
	game        *tichu.Game
	logMessages []*playable.LogMessage
	savedRounds int
	gameSaved   bool

	execInRunLoop chan func()
	stateChanged  chan state
	close         chan bool
}

// NewDealer creates a new dealer object for a new room
// This is called from a blocking state, so it needs to return quickly
func NewDealer(pitBoss *PitBoss, name string, store history.Store, options tichu.Options) *Dealer {
	room := &Room{
		UUID:    uuid.New().String(),
		Name:    name,
		Created: time.Now().UTC(),
		Seats:   []*Seat{},
	}

	return &Dealer{
		pitBoss:       pitBoss,
		store:         store,
		options:       options,
		log:           logrus.WithField("room", room.UUID),
		room:          room,
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		stateChanged:  make(chan state, 256),
		close:         make(chan bool),
	}
}

// Room returns a copy of the room
func (d *Dealer) Room() *Room {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return d.room.clone()
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

func (d *Dealer) runLoop() {
	d.log.Debug("creating dealer run loop")
	for {
		select {
		case s := <-d.stateChanged:
			switch s {
			case stateClientEvent:
				d.sendPlayerData()
			case stateGameEvent:
				d.sendGameData()
			case stateGameEnded:
				d.sendGameData()
				d.sendGameEnded()
			}
		case fn := <-d.execInRunLoop:
			fn()
		case msgs := <-d.logChan():
			d.addLogMessages(msgs)
			for _, client := range d.Clients() {
				client.Send(newLogResponse(msgs))
			}
		case <-d.close:
			if d.game != nil {
				d.game.Close()
			}

			d.log.Debug("terminating dealer run loop")
			return
		}
	}
}

// logChan returns the log channel of the game, or nil if the game hasn't started
func (d *Dealer) logChan() <-chan []*playable.LogMessage {
	if d.game == nil {
		return nil
	}

	return d.game.LogChan()
}

// notify queues a state change for the run loop
func (d *Dealer) notify(s state) {
	select {
	case d.stateChanged <- s:
	default:
		d.log.WithField("state", s).Warn("state change queue is full")
	}
}

// SitDown seats a new player in the room. A player without a name gets a random one.
// The game starts once the fourth player sits down.
func (d *Dealer) SitDown(name string) (*Seat, error) {
	if name == "" {
		name = util.GetRandomName()
	}

	d.lock.Lock()
	if d.room.isFull() {
		d.lock.Unlock()
		return nil, ErrRoomFull
	}

	seat := &Seat{
		Seat:     len(d.room.Seats),
		PlayerID: int64(len(d.room.Seats) + 1),
		Name:     name,
	}
	d.room.Seats = append(d.room.Seats, seat)
	full := d.room.isFull()
	d.lock.Unlock()

	d.log.WithFields(logrus.Fields{
		"playerID": seat.PlayerID,
		"seat":     seat.Seat,
	}).Info("player sat down")

	d.notify(stateClientEvent)
	if full {
		d.execInRunLoop <- d.startGame
	}

	copied := *seat
	return &copied, nil
}

// NOTE: must only be called from the run loop
func (d *Dealer) startGame() {
	if d.game != nil {
		return
	}

	opts := d.options
	opts.Dispatch = d.dispatch

	game, err := tichu.NewGame(d.log, d.Room().playerIDs(), opts)
	if err != nil {
		d.log.WithError(err).Error("could not start the game")
		return
	}

	d.game = game
	d.log.Info("game started")
	d.notify(stateGameEvent)
}

// dispatch runs a game event, such as a bomb window expiry, in the run loop
func (d *Dealer) dispatch(f func()) {
	select {
	case d.execInRunLoop <- func() {
		f()
		d.afterGameEvent()
	}:
	case <-d.close:
	}
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	d.lock.Unlock()

	d.notify(stateClientEvent)
	d.execInRunLoop <- func() {
		if d.game == nil {
			return
		}

		gs, err := d.game.GetPlayerState(client.playerID)
		if err != nil {
			d.log.WithError(err).Error("could not get player state")
			return
		}

		client.Send(gs)
		if len(d.logMessages) > 0 {
			client.Send(newLogResponse(d.logMessages))
		}
	}
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) (lastClient bool) {
	d.lock.Lock()
	delete(d.clients, client)
	nClients := len(d.clients)
	d.lock.Unlock()

	if nClients > 0 {
		d.notify(stateClientEvent)
		return false
	}

	return true
}

// Ended returns true once the game of the room is over
func (d *Dealer) Ended() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return d.ended
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	close(d.close)
}

// History returns the completed rounds of the room
func (d *Dealer) History(ctx context.Context, start int64, rows int) ([]*tichu.RoundResult, error) {
	return d.store.Rounds(ctx, d.Room().UUID, start, rows)
}

// Game returns the saved result of the match, or history.ErrNotFound while it is still being played
func (d *Dealer) Game(ctx context.Context) (*history.Game, error) {
	return d.store.Game(ctx, d.Room().UUID)
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *playable.PayloadIn) {
	d.execInRunLoop <- func() {
		_ = d.handleMessage(c, msg)
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) handleMessage(c *Client, msg *playable.PayloadIn) error {
	if d.game == nil {
		c.Send(newErrorResponse(msg.Context, ErrGameNotStarted))
		return ErrGameNotStarted
	}

	res, updateState, err := d.game.Action(c.playerID, msg)
	if err != nil {
		d.log.WithError(err).WithField("client", c.String()).Info("could not perform action")
		c.Send(newErrorResponse(msg.Context, err))
		return err
	}

	if res != nil {
		res.Context = msg.Context
		c.Send(res)
	}

	if updateState {
		d.afterGameEvent()
	}

	return nil
}

// afterGameEvent persists finished rounds and broadcasts the new state
// NOTE: must only be called from the run loop
func (d *Dealer) afterGameEvent() {
	if d.game == nil {
		return
	}

	d.saveRounds()

	if details, isOver := d.game.GetEndOfGameDetails(); isOver {
		if !d.gameSaved {
			if err := d.store.SaveGame(context.Background(), d.room.UUID, details); err != nil {
				d.log.WithError(err).Error("could not save game")
			}

			d.gameSaved = true
			d.lock.Lock()
			d.ended = true
			d.lock.Unlock()

			d.notify(stateGameEnded)
		}

		return
	}

	d.notify(stateGameEvent)
}

func (d *Dealer) saveRounds() {
	results := d.game.RoundResults()
	for _, result := range results[d.savedRounds:] {
		if err := d.store.SaveRound(context.Background(), d.room.UUID, result); err != nil {
			d.log.WithError(err).WithField("round", result.Round).Error("could not save round")
		}
	}

	d.savedRounds = len(results)
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendGameEnded() {
	details, _ := d.game.GetEndOfGameDetails()
	for _, client := range d.Clients() {
		client.Send(&playable.Response{
			Key:  "gameEnded",
			Data: details,
		})
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendGameData() {
	if d.game == nil {
		// should not happen
		d.log.Error("game state changed, but there's no active game")
		return
	}

	for _, client := range d.Clients() {
		data, err := d.game.GetPlayerState(client.playerID)
		if err != nil {
			d.log.WithError(err).Error("could not get player state")
			continue
		}

		client.Send(data)
	}
}

func (d *Dealer) sendPlayerData() {
	room := d.Room()
	clients := d.Clients()

	connected := make(map[int64]bool)
	for _, client := range clients {
		connected[client.playerID] = true
	}

	players := make([]*clientStatePlayer, len(room.Seats))
	for i, seat := range room.Seats {
		players[i] = &clientStatePlayer{
			Seat:        seat,
			IsConnected: connected[seat.PlayerID],
		}
	}

	for _, client := range clients {
		client.Send(&playable.Response{
			Key:  "clientState",
			Data: players,
		})
	}
}
