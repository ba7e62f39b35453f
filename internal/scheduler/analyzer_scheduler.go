// Package scheduler triggers the daily summary job.
package scheduler

import (
	"context"
	"time"

	"analyzer_server/adapter/in/worker"
	"analyzer_server/pkg/logger"
)

// Scheduler submits a summary.generate job once per day at the
// configured wall-clock time.
type Scheduler struct {
	pool     *worker.Pool
	hour     int
	minute   int
	location *time.Location
}

func New(pool *worker.Pool, hour, minute int) *Scheduler {
	return &Scheduler{
		pool:     pool,
		hour:     hour,
		minute:   minute,
		location: time.Local,
	}
}

// Start runs the schedule loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		wait := time.Until(s.nextRun(time.Now()))
		logger.Info("next daily summary in %s", wait.Round(time.Second))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			msg := worker.NewMessage(worker.JobSummaryGenerate, nil)
			if !s.pool.Submit(msg) {
				logger.Error("failed to submit daily summary job")
			}
		}
	}
}

// nextRun returns the next occurrence of the configured time, strictly
// after now so a finished run never double-fires.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
