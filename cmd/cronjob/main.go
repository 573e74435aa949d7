package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"runnerly-backend/internal/config"
	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/jobs"
	"runnerly-backend/internal/logger"
	"runnerly-backend/internal/repository/postgres"
	"runnerly-backend/internal/scheduler"
	"runnerly-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'archive-completed', 'start-reminders', 'all-nightly')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Runnerly cronjob runner", "log_level", cfg.Log.Level)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	emailSender := service.NewSendGridEmailSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	// Jobs go through the same state machine as the API so audit history
	// stays consistent. The cronjob runner does not dispatch notifications
	// for status changes it makes; the nil dispatcher keeps it quiet.
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.PricingRuleRepository,
		service.NewPricingEngine(service.PricingConfig{
			BaseCityPriceCents:  cfg.Pricing.BaseCityPriceCents,
			PerKmPriceCents:     cfg.Pricing.PerKmPriceCents,
			HelpAtHomeBaseCents: cfg.Pricing.HelpAtHomeBaseCents,
			PerHourRateCents:    cfg.Pricing.PerHourRateCents,
		}),
		nil,
		domain.DefaultTransitionTable(),
	)

	jobRunner := jobs.NewJobRunner(store.BookingRepository, store.UserRepository, bookingSvc, emailSender, cfg)

	if *runOnce != "" {
		switch *runOnce {
		case "archive-completed":
			jobRunner.ArchiveCompletedBookings()
		case "start-reminders":
			jobRunner.SendStartReminders()
		case "all-nightly":
			jobRunner.RunAllNightlyJobs()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	logger.Info("Cronjob runner stopped")
}
