package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/pqbridge/crdb"
	"github.com/danthegoodman1/pqbridge/datastore"
	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/http_server"
	"github.com/danthegoodman1/pqbridge/metastore"
	"github.com/danthegoodman1/pqbridge/migrations"
	"github.com/danthegoodman1/pqbridge/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting pqbridge")

	store, err := datastore.New(utils.DATASTORE)
	if err != nil {
		logger.Error().Err(err).Msg("error creating datastore")
		os.Exit(1)
	}

	var meta metastore.MetaStore
	if utils.CRDB_DSN != "" {
		meta, err = connectCatalog()
		if err != nil {
			logger.Error().Err(err).Msg("error connecting to the file catalog")
			os.Exit(1)
		}
	} else {
		logger.Warn().Msg("CRDB_DSN not set, file catalog disabled")
	}

	httpServer := http_server.StartHTTPServer(store, meta)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	// Convert the time to seconds
	sleepTime := utils.SHUTDOWN_SLEEP_SEC
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
}

// connectCatalog applies migrations when AUTO_MIGRATE=1, otherwise it only
// checks that they were applied.
func connectCatalog() (metastore.MetaStore, error) {
	if os.Getenv("AUTO_MIGRATE") == "1" {
		if _, err := migrations.RunMigrations(utils.CRDB_DSN); err != nil {
			return nil, fmt.Errorf("error in RunMigrations: %w", err)
		}
	} else if err := migrations.CheckMigrations(utils.CRDB_DSN); err != nil {
		return nil, fmt.Errorf("error in CheckMigrations: %w", err)
	}

	pool, err := crdb.ConnectToDB(context.Background(), utils.CRDB_DSN)
	if err != nil {
		return nil, err
	}
	return metastore.NewCRDBMetaStore(pool), nil
}
