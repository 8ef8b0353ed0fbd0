package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tichu-server/pkg/history"
	"tichu-server/pkg/playable"
	"tichu-server/pkg/tichu"
)

func newTestDealer(opts tichu.Options) (*Dealer, *history.MemoryStore) {
	store := history.NewMemoryStore()
	d := NewDealer(&PitBoss{}, "test room", store, opts)
	d.StartShift()

	return d, store
}

// inRunLoop runs f in the run loop of the dealer and waits for it to finish
func inRunLoop(d *Dealer, f func()) {
	done := make(chan bool)
	d.execInRunLoop <- func() {
		defer close(done)
		f()
	}

	<-done
}

// drain discards everything sent to the client until the test ends
func drain(t *testing.T, c *Client) {
	done := make(chan bool)
	t.Cleanup(func() {
		close(done)
	})

	go func() {
		for {
			select {
			case <-c.SendChan():
			case <-done:
				return
			}
		}
	}()
}

func seatPlayers(t *testing.T, d *Dealer) map[int64]*Client {
	clients := make(map[int64]*Client)
	for _, name := range []string{"Ann", "Bob", "Cat", ""} {
		seat, err := d.SitDown(name)
		require.NoError(t, err)

		c := NewClient(nil, d.Room().UUID, seat.PlayerID)
		drain(t, c)
		d.AddClient(c)
		clients[seat.PlayerID] = c
	}

	return clients
}

func TestDealer_AddClient(t *testing.T) {
	d, _ := newTestDealer(tichu.DefaultOptions())
	defer d.EndShift()

	c := NewClient(nil, d.Room().UUID, 1)
	c2 := NewClient(nil, d.Room().UUID, 2)

	d.AddClient(c)
	d.AddClient(c2)
	assert.Len(t, d.Clients(), 2)

	assert.False(t, d.RemoveClient(c))
	assert.True(t, d.RemoveClient(c2))
	assert.Empty(t, d.Clients())
}

func TestDealer_SitDown(t *testing.T) {
	a := assert.New(t)
	d, _ := newTestDealer(tichu.DefaultOptions())
	defer d.EndShift()

	c := NewClient(nil, d.Room().UUID, 0)
	inRunLoop(d, func() {
		a.ErrorIs(d.handleMessage(c, &playable.PayloadIn{Action: "pass"}), ErrGameNotStarted)
	})

	res := <-c.SendChan()
	a.Equal(&playable.Response{Key: "error", Value: ErrGameNotStarted.Error()}, res)

	clients := seatPlayers(t, d)
	a.Len(clients, 4)

	room := d.Room()
	a.Len(room.Seats, 4)
	for i, seat := range room.Seats {
		a.Equal(i, seat.Seat)
		a.Equal(int64(i+1), seat.PlayerID)
		a.NotEmpty(seat.Name)
	}
	a.Equal("Ann", room.Seats[0].Name)

	seat, err := d.SitDown("Dan")
	a.Nil(seat)
	a.ErrorIs(err, ErrRoomFull)

	inRunLoop(d, func() {
		a.NotNil(d.game)
	})
}

func TestDealer_handleMessage(t *testing.T) {
	a := assert.New(t)
	d, _ := newTestDealer(tichu.Options{WinningScore: 1000, BombWindow: time.Second, Seed: 3})
	defer d.EndShift()

	seatPlayers(t, d)

	c := NewClient(nil, d.Room().UUID, 1)
	inRunLoop(d, func() {
		err := d.handleMessage(c, &playable.PayloadIn{Action: "play", Context: "abc"})
		a.ErrorIs(err, tichu.ErrWrongPhase)

		err = d.handleMessage(c, &playable.PayloadIn{
			Action:         "bonusBid",
			AdditionalData: playable.AdditionalData{"call": true},
			Context:        "def",
		})
		a.NoError(err)
	})

	res := (<-c.SendChan()).(*playable.Response)
	a.Equal("error", res.Key)
	a.Equal("abc", res.Context)

	res = (<-c.SendChan()).(*playable.Response)
	a.Equal(playable.OK("def"), res)

	inRunLoop(d, func() {
		a.True(d.game.GetState(1).GameState.Seats[0].BonusBid)
	})
}

// botStep plays one step of the game for whoever has to act, and returns the phase it acted in
// NOTE: must only be called from the run loop
func botStep(t *testing.T, d *Dealer, clients map[int64]*Client) tichu.Phase {
	state := d.game.GetState(0).GameState
	switch state.Phase {
	case tichu.PhaseDealingRemaining6:
		for _, c := range clients {
			assert.NoError(t, d.handleMessage(c, &playable.PayloadIn{
				Action:         "bonusBid",
				AdditionalData: playable.AdditionalData{"call": false},
			}))
		}
	case tichu.PhaseCardExchange:
		for id, c := range clients {
			hand := d.game.GetState(id).Hand
			assert.NoError(t, d.handleMessage(c, &playable.PayloadIn{Action: "exchange", Cards: hand[:3]}))
		}
	case tichu.PhasePlaying:
		c := clients[state.CurrentTurn]
		for _, card := range d.game.GetState(c.playerID).Hand {
			err := d.handleMessage(c, &playable.PayloadIn{
				Action:         "play",
				AdditionalData: playable.AdditionalData{"cards": []string{card.ID()}},
			})

			if err == nil {
				return state.Phase
			}
		}

		assert.NoError(t, d.handleMessage(c, &playable.PayloadIn{Action: "pass"}))
	}

	return state.Phase
}

func TestDealer_playsMatch(t *testing.T) {
	a := assert.New(t)
	d, store := newTestDealer(tichu.Options{WinningScore: 1, BombWindow: 5 * time.Millisecond, Seed: 11})
	defer d.EndShift()

	clients := seatPlayers(t, d)

	started := false
	for i := 0; i < 100 && !started; i++ {
		inRunLoop(d, func() {
			started = d.game != nil
		})
	}

	if !a.True(started) {
		return
	}

	over := false
	for i := 0; i < 10000 && !over; i++ {
		var phase tichu.Phase
		inRunLoop(d, func() {
			if _, over = d.game.IsOver(); !over {
				phase = botStep(t, d, clients)
			}
		})

		if phase == tichu.PhaseBombWindow {
			time.Sleep(10 * time.Millisecond)
		}
	}

	if !a.True(over) {
		return
	}

	var results []*tichu.RoundResult
	inRunLoop(d, func() {
		results = d.game.RoundResults()
		a.True(d.gameSaved)
		a.Equal(len(results), d.savedRounds)
	})
	a.True(d.Ended())

	saved, err := store.Rounds(context.Background(), d.Room().UUID, 0, 100)
	a.NoError(err)
	a.Equal(results, saved)

	game, err := store.Game(context.Background(), d.Room().UUID)
	a.NoError(err)
	a.Len(game.Winners, 2)
	a.Len(game.FinalScores, 4)

	rounds, err := d.History(context.Background(), 0, 100)
	a.NoError(err)
	a.Len(rounds, len(results))
}

func TestDealer_addLogMessages(t *testing.T) {
	d := &Dealer{}
	for i := 0; i < 30; i++ {
		d.addLogMessages(playable.SimpleLogMessageSlice(0, "message %d", i))
	}

	a := assert.New(t)
	a.Len(d.logMessages, logMessageLimit)
	a.Equal("message 5", d.logMessages[0].Message)
	a.Equal("message 29", d.logMessages[logMessageLimit-1].Message)
}
