package room

import (
	"sync"

	"github.com/sirupsen/logrus"
	"tichu-server/pkg/history"
	"tichu-server/pkg/tichu"
)

// PitBoss is responsible for dispatching players to rooms
type PitBoss struct {
	lock    sync.RWMutex
	dealers map[string]*Dealer

	store   history.Store
	options tichu.Options

	connect    chan *Client
	disconnect chan *Client
	close      chan bool
}

// NewPitBoss returns a new dispatch object
// Every room plays with the given options, and saves its history to store
func NewPitBoss(store history.Store, options tichu.Options) *PitBoss {
	return &PitBoss{
		dealers:    make(map[string]*Dealer),
		store:      store,
		options:    options,
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
		close:      make(chan bool),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

// EndShift stops the run loop and every dealer
func (p *PitBoss) EndShift() {
	close(p.close)

	p.lock.Lock()
	defer p.lock.Unlock()

	for uuid, dealer := range p.dealers {
		dealer.EndShift()
		delete(p.dealers, uuid)
	}
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			logrus.WithField("player", client.String()).Debug("client connected")
			dealer, found := p.Dealer(client.roomUUID)
			if !found {
				client.CloseError = ErrRoomNotFound
				client.Close <- ErrRoomNotFound.Error()
				continue
			}

			dealer.AddClient(client)
		case client := <-p.disconnect:
			logrus.WithField("player", client.String()).Debug("client disconnected")
			dealer, found := p.Dealer(client.roomUUID)
			if !found {
				logrus.WithField("uuid", client.roomUUID).WithField("type", "exception").Error("room not found")
				continue
			}

			if dealer.RemoveClient(client) && dealer.Ended() {
				p.closeRoom(client.roomUUID)
			}
		case <-p.close:
			return
		}
	}
}

// CreateRoom opens a new room with its own dealer
func (p *PitBoss) CreateRoom(name string) *Room {
	dealer := NewDealer(p, name, p.store, p.options)
	dealer.StartShift()

	room := dealer.Room()

	p.lock.Lock()
	p.dealers[room.UUID] = dealer
	p.lock.Unlock()

	logrus.WithField("room", room.UUID).Info("room created")
	return room
}

// Dealer returns the dealer of the room
func (p *PitBoss) Dealer(uuid string) (*Dealer, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	dealer, ok := p.dealers[uuid]
	return dealer, ok
}

// RoomCount returns the number of open rooms
func (p *PitBoss) RoomCount() int {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return len(p.dealers)
}

func (p *PitBoss) closeRoom(uuid string) {
	p.lock.Lock()
	dealer, ok := p.dealers[uuid]
	delete(p.dealers, uuid)
	p.lock.Unlock()

	if ok {
		dealer.EndShift()
		logrus.WithField("room", uuid).Info("room closed")
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}
