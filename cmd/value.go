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

// valueCmd holds the flags for the 'value' subcommand.
type valueCmd struct {
	date     string
	currency string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value the portfolio in its reporting currency" }
func (*valueCmd) Usage() string {
	return `folio value [-d <date>] [-c <currency>]

  Values every holding through the configured quote source, converts to the
  reporting currency and displays market values, gains and allocations.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Valuation date (YYYY-MM-DD), empty for live prices")
	f.StringVar(&c.currency, "c", "", "Reporting currency, defaults to the ledger's")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if c.currency != "" {
		p.Currency = c.currency
	}

	system, err := newSystem(ctx)
	if err != nil {
		return fail(err)
	}

	valuation := system.Valuation(ctx, p, on)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "SYMBOL\tQUANTITY\tVALUE\tGAIN\tGAIN%%\tALLOC%%\t\n")
	for _, line := range valuation.Lines {
		stale := ""
		if line.Stale {
			stale = "(stale)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			line.Asset.Symbol, line.Quantity, line.MarketValue,
			line.GainLoss.SignedString(), line.GainLossPct.SignedString(),
			line.AllocationPct, stale)
	}
	fmt.Fprintf(w, "TOTAL\t\t%s\t%s\t%s\t\t\n",
		valuation.TotalValue, valuation.TotalGain.SignedString(), valuation.GainLossPct().SignedString())
	w.Flush()
	return subcommands.ExitSuccess
}
