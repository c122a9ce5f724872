package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ozgurk/folio"
)

// xirrCmd holds the flags for the 'xirr' subcommand.
type xirrCmd struct {
	date string
}

func (*xirrCmd) Name() string     { return "xirr" }
func (*xirrCmd) Synopsis() string { return "compute the annualized money-weighted return" }
func (*xirrCmd) Usage() string {
	return `folio xirr [-d <date>]

  Builds the dated cash-flow series of every purchase and sale in the ledger,
  closes it with the portfolio's value on the given date and solves for the
  annualized internal rate of return.
`
}

func (c *xirrCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folio.Today().String(), "Terminal valuation date (YYYY-MM-DD)")
}

func (c *xirrCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := folio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	p, err := LoadPortfolio(*ledgerFile)
	if err != nil {
		return fail(err)
	}
	system, err := newSystem(ctx)
	if err != nil {
		return fail(err)
	}

	valuation := system.Valuation(ctx, p, on)

	var flows []folio.CashFlow
	for _, tx := range p.Transactions {
		if tx.When().After(on) {
			continue
		}
		switch v := tx.(type) {
		case folio.Buy:
			flows = append(flows, folio.CashFlow{On: v.When(), Amount: v.Cost().Amount().Neg()})
		case folio.Sell:
			flows = append(flows, folio.CashFlow{On: v.When(), Amount: v.Proceeds().Amount()})
		}
	}
	flows = append(flows, folio.CashFlow{On: on, Amount: valuation.TotalValue.Amount()})

	rate, ok := folio.XIRR(flows)
	if !ok {
		fmt.Println("no meaningful rate of return for this ledger")
		return subcommands.ExitSuccess
	}
	fmt.Printf("XIRR as of %s: %s\n", on, folio.Percent(100*rate))
	return subcommands.ExitSuccess
}
