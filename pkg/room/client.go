package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"tichu-server/pkg/playable"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	dealer *Dealer

	// playerID is 0 for a spectator
	playerID int64
	roomUUID string
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, roomUUID string, playerID int64) *Client {
	return &Client{
		send:     make(chan interface{}, 256),
		Close:    make(chan string, 1),
		Conn:     conn,
		playerID: playerID,
		roomUUID: roomUUID,
	}
}

// Send send a message to the web client
// The message is dropped if the client isn't keeping up
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		logrus.WithField("client", c.String()).Warn("client send buffer is full")
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// PlayerID returns the player the client is seated as
func (c *Client) PlayerID() int64 {
	return c.playerID
}

// String returns a traceable identifier for the player and room
func (c *Client) String() string {
	return fmt.Sprintf("%d:%s", c.playerID, c.roomUUID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *playable.PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
