package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"runnerly-backend/internal/jobs"
	"runnerly-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	_, err := s.cron.AddFunc(cfg.ArchiveCompletedBookings, s.jobs.ArchiveCompletedBookings)
	if err != nil {
		logger.Error("Failed to register ArchiveCompletedBookings job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.SendStartReminders, s.jobs.SendStartReminders)
	if err != nil {
		logger.Error("Failed to register SendStartReminders job", "error", err)
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	logger.Info("Starting job scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	logger.Info("Stopping job scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}
