package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	api "runnerly-backend/internal/api/http"
	"runnerly-backend/internal/config"
	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/jobs"
	"runnerly-backend/internal/logger"
	"runnerly-backend/internal/repository/postgres"
	"runnerly-backend/internal/scheduler"
	"runnerly-backend/internal/security"
	"runnerly-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Runnerly backend", "log_level", cfg.Log.Level, "address", cfg.GetServerAddress())

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
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	emailSender := service.NewSendGridEmailSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	var smsSender service.SMSSender
	if cfg.SMS.Endpoint != "" {
		smsSender = service.NewHTTPSMSSender(cfg.SMS.Endpoint, cfg.SMS.APIKey)
	}

	dispatcher := service.NewNotificationDispatcher(
		service.DefaultTemplateTable(),
		store.UserRepository,
		emailSender,
		smsSender,
	)

	pricingEngine := service.NewPricingEngine(service.PricingConfig{
		BaseCityPriceCents:  cfg.Pricing.BaseCityPriceCents,
		PerKmPriceCents:     cfg.Pricing.PerKmPriceCents,
		HelpAtHomeBaseCents: cfg.Pricing.HelpAtHomeBaseCents,
		PerHourRateCents:    cfg.Pricing.PerHourRateCents,
	})

	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.PricingRuleRepository,
		pricingEngine,
		dispatcher,
		domain.DefaultTransitionTable(),
	)
	negotiationSvc := service.NewNegotiationService(store.BookingRepository, bookingSvc)
	compensationSvc := service.NewCompensationService(store.BookingRepository, store.CompensationRepository, bookingSvc)

	jobRunner := jobs.NewJobRunner(store.BookingRepository, store.UserRepository, bookingSvc, emailSender, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	router := api.NewRouter(
		tokenManager,
		api.NewBookingHandler(bookingSvc, compensationSvc),
		api.NewNegotiationHandler(negotiationSvc),
		api.NewPricingHandler(pricingEngine, store.PricingRuleRepository),
	)

	logger.Info("Listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("Server stopped", "error", err)
		log.Fatalf("Server stopped: %v", err)
	}
}
