package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"tichu-server/internal/config"
)

func Test_gameOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Game.WinningScore = 500
	cfg.Game.BombWindowMillis = 1500
	cfg.Game.Seed = 42

	opts := gameOptions(cfg)
	assert.Equal(t, 500, opts.WinningScore)
	assert.Equal(t, 1500*time.Millisecond, opts.BombWindow)
	assert.Equal(t, int64(42), opts.Seed)

	opts = gameOptions(config.Config{})
	assert.Equal(t, 1000, opts.WinningScore)
	assert.Equal(t, 3*time.Second, opts.BombWindow)
	assert.Equal(t, int64(0), opts.Seed)
}
