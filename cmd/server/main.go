package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"tichu-server/internal/config"
	"tichu-server/internal/jwt"
	"tichu-server/internal/mux"
	"tichu-server/pkg/db"
	"tichu-server/pkg/history"
	"tichu-server/pkg/room"
	"tichu-server/pkg/tichu"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	// fail fast
	jwt.LoadKey()

	pitBoss := room.NewPitBoss(historyStore(), gameOptions(config.Instance()))
	pitBoss.StartShift()

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, pitBoss))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

// historyStore returns a Postgres store when a database is configured, otherwise history is kept in memory
func historyStore() history.Store {
	if config.Instance().PGDSN == "" {
		logrus.Warn("no database configured, history will not survive a restart")
		return history.NewMemoryStore()
	}

	// run the db migrations
	db.Migrate()
	return history.NewPostgresStore(db.Instance())
}

func gameOptions(cfg config.Config) tichu.Options {
	opts := tichu.DefaultOptions()
	if cfg.Game.WinningScore > 0 {
		opts.WinningScore = cfg.Game.WinningScore
	}

	if cfg.Game.BombWindowMillis > 0 {
		opts.BombWindow = cfg.BombWindow()
	}

	opts.Seed = cfg.Game.Seed
	return opts
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
