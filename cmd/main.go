package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/myflix/internal/session"
	"github.com/desertthunder/myflix/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var store session.Store
	if db, err := shared.NewDatabase(config.Database.Path); err != nil {
		logger.Warnf("falling back to in-memory session store: %v", err)
		store = session.NewMemStore()
	} else {
		defer db.Close()
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			logger.Warnf("falling back to in-memory session store: %v", err)
			store = session.NewMemStore()
		} else {
			store = session.NewSQLiteStore(db)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Store:  store,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "myflix",
		Usage:    "Browse the myFlix movie catalog and manage your favorites",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Fatal("not logged in; run 'myflix auth login' first")
		}
		logger.Fatalf("application error: %v", err)
	}
}
