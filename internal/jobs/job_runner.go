package jobs

import (
	"runnerly-backend/internal/config"
	"runnerly-backend/internal/logger"
	"runnerly-backend/internal/repository"
	"runnerly-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	bookingSvc  service.BookingService
	email       service.EmailSender
	config      *config.Config
}

func NewJobRunner(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	bookingSvc service.BookingService,
	email service.EmailSender,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		bookingSvc:  bookingSvc,
		email:       email,
		config:      cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ArchiveCompletedBookings()
	jr.SendStartReminders()
}
