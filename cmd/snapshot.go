package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ozgurk/folio"
)

// snapshotCmd holds the flags for the 'snapshot' subcommand.
type snapshotCmd struct {
	date string
	name string
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "create an immutable valuation snapshot" }
func (*snapshotCmd) Usage() string {
	return `folio snapshot [-d <date>] [-n <name>]

  Values the portfolio and persists a snapshot of it: totals, one item per
  holding, and the money-weighted return since inception when the portfolio
  already has an earlier snapshot.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Snapshot date (YYYY-MM-DD), empty for today")
	f.StringVar(&c.name, "n", "", "Snapshot name, empty derives one from the portfolio and date")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var on folio.Date
	if c.date != "" {
		var err error
		if on, err = folio.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	p, err := LoadPortfolio(*ledgerFile)
	if err != nil {
		return fail(err)
	}
	system, err := newSystem(ctx)
	if err != nil {
		return fail(err)
	}

	snap, err := system.CreatePortfolioSnapshot(ctx, p, on, c.name)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Created snapshot %q (%s): total %s, gain %s",
		snap.Name, snap.Slug, snap.TotalValue, snap.GainLoss.SignedString())
	if snap.IRRPct != nil {
		fmt.Printf(", IRR %s", folio.Percent(*snap.IRRPct))
	}
	fmt.Println()
	return subcommands.ExitSuccess
}
