package main

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
	"tichu-server/internal/config"
	"tichu-server/pkg/db"
)

func main() {
	dbh := waitForDB(config.Instance().PGDSN)
	if err := db.MigrateInstance(dbh, config.Instance().MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	logrus.Info("migrations complete")
}

func waitForDB(dsn string) *sql.DB {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh, err := db.Open(dsn)
			if err == db.ErrNotConfigured {
				logrus.Fatal("missing pgDsn in configuration")
			}

			if err == nil {
				return dbh
			}

			logrus.WithError(err).Debug("database is not ready")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
