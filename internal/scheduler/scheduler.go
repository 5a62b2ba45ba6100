package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"rentalmarket/internal/jobs"
	"rentalmarket/internal/logger"
)

// Specs holds the cron expressions (with seconds) for each job.
type Specs struct {
	Escalation          string
	NotificationCleanup string
}

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// New creates a scheduler in UTC with seconds precision and registers every
// job. An invalid spec is an error.
func New(jobRunner *jobs.JobRunner, specs Specs) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{cron: c, jobs: jobRunner}
	if _, err := s.cron.AddFunc(specs.Escalation, s.jobs.EscalateBookings); err != nil {
		return nil, fmt.Errorf("register EscalateBookings: %w", err)
	}
	if specs.NotificationCleanup != "" {
		if _, err := s.cron.AddFunc(specs.NotificationCleanup, s.jobs.PurgeNotifications); err != nil {
			return nil, fmt.Errorf("register PurgeNotifications: %w", err)
		}
	}

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
	return s, nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
