// Package cmd implements the CLI application to value portfolios and manage
// their snapshot histories.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/ozgurk/folio"
	"github.com/ozgurk/folio/quotes"
	"github.com/ozgurk/folio/store"
	"github.com/ozgurk/folio/store/pgstore"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&positionsCmd{}, "reports")
	c.Register(&valueCmd{}, "reports")
	c.Register(&xirrCmd{}, "reports")

	c.Register(&snapshotCmd{}, "snapshots")
	c.Register(&scheduleCmd{}, "snapshots")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var ledgerFile = flag.String("ledger-file", "portfolio.json", "Path to the portfolio ledger file (JSON format)")
var configPath = flag.String("config-path", ".", "Path to the folder holding appsettings.yaml")

var log = logrus.New()

// newSystem wires the engine from the configuration: a quote client when an
// API is configured (a static offline oracle otherwise), and a PostgreSQL
// store when a database is configured (in-memory otherwise).
func newSystem(ctx context.Context) (*folio.System, error) {
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Warn("no configuration found, running offline")
		cfg = &Config{}
	}
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}

	var oracle folio.Oracle = folio.NewStaticOracle()
	if cfg.Quotes.BaseURL != "" {
		oracle = quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.Token, log)
	}

	var snapshots folio.SnapshotStore = store.NewMemory()
	if cfg.Database.URL != "" {
		pg, err := pgstore.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("connecting to snapshot database: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrating snapshot database: %w", err)
		}
		snapshots = pg
	}

	return folio.NewSystem(oracle, snapshots, log), nil
}

// fail prints the error and maps it to a subcommands exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
