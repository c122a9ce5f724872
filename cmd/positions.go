package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/ozgurk/folio"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	date string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display reconstructed holdings for a specific date" }
func (*positionsCmd) Usage() string {
	return `folio positions [-d <date>]

  Replays the ledger and displays the quantity, cost basis and average cost
  of every holding as of the given date.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folio.Today().String(), "Date for the positions report (YYYY-MM-DD)")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := folio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	p, err := LoadPortfolio(*ledgerFile)
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "SYMBOL\tQUANTITY\tCOST BASIS\tAVG COST\n")
	for _, pos := range p.Positions(on) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			pos.Asset.Symbol, pos.Quantity, pos.CostBasis, pos.AverageCost())
	}
	w.Flush()
	return subcommands.ExitSuccess
}
