package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/subcommands"

	"github.com/ozgurk/folio"
	"github.com/ozgurk/folio/scheduler"
)

// scheduleCmd holds the flags for the 'schedule' subcommand.
type scheduleCmd struct {
	cronSpec string
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "create snapshots on a recurring schedule" }
func (*scheduleCmd) Usage() string {
	return `folio schedule [-cron <spec>]

  Runs until interrupted, creating a portfolio snapshot every time the cron
  expression fires. The ledger file is re-read on every run, so transactions
  recorded while the scheduler runs are picked up.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cronSpec, "cron", "0 18 * * *", "Cron expression for snapshot creation")
}

func (c *scheduleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	system, err := newSystem(ctx)
	if err != nil {
		return fail(err)
	}

	job := func(ctx context.Context) error {
		p, err := LoadPortfolio(*ledgerFile)
		if err != nil {
			return err
		}
		_, err = system.CreatePortfolioSnapshot(ctx, p, folio.Date{}, "")
		return err
	}

	task, err := scheduler.Schedule(c.cronSpec, "portfolio-snapshot", job, log, 5*time.Minute)
	if err != nil {
		return fail(err)
	}
	defer task.Cancel()

	fmt.Printf("Scheduling snapshots with %q, press Ctrl-C to stop\n", c.cronSpec)
	stop, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()
	<-stop.Done()
	return subcommands.ExitSuccess
}
