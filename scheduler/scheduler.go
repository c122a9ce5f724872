// Package scheduler runs snapshot jobs on a cron schedule, so portfolio
// histories keep accruing without anyone clicking a button at month end.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one unit of scheduled work, typically a closure creating a snapshot.
type Job func(ctx context.Context) error

// ScheduledTask is a job bound to a cron expression. Cancel stops future runs;
// a run already in flight finishes.
type ScheduledTask struct {
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
}

// Schedule registers the job under the given cron spec (standard 5-field
// syntax, e.g. "0 18 28-31 * *" for month-end evenings) and starts the clock.
func Schedule(cronSpec, name string, job Job, log *logrus.Logger, timeout time.Duration) (*ScheduledTask, error) {
	if log == nil {
		log = logrus.New()
	}
	c := cron.New()
	cancel := make(chan struct{})
	task := &ScheduledTask{cron: c, cancel: cancel}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-cancel:
			return
		default:
		}
		ctx, done := context.WithTimeout(context.Background(), timeout)
		defer done()
		if err := job(ctx); err != nil {
			log.WithError(err).WithField("job", name).Error("scheduled job failed")
			return
		}
		log.WithField("job", name).Info("scheduled job done")
	})
	if err != nil {
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

// Cancel removes the entry and stops the cron runner. A run already started
// keeps going until its timeout; none starts afterwards.
func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	s.cron.Stop()
	close(s.cancel)
}
