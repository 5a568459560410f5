package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	httpapi "mentorhub-backend/internal/api/http"
	"mentorhub-backend/internal/billing"
	"mentorhub-backend/internal/booking"
	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/config"
	"mentorhub-backend/internal/logger"
	"mentorhub-backend/internal/meeting"
	"mentorhub-backend/internal/notify"
	"mentorhub-backend/internal/repository/postgres"
	"mentorhub-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MentorHub Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Calendar configuration", "timezone", cfg.Calendar.Timezone, "first_slot_hour", cfg.Calendar.FirstSlotHour, "last_slot_hour", cfg.Calendar.LastSlotHour)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize operating calendar
	cal, err := calendar.New(cfg.Calendar.Timezone)
	if err != nil {
		logger.Error("Failed to initialize calendar", "error", err)
		log.Fatalf("Failed to initialize calendar: %v", err)
	}
	clock := calendar.SystemClock()
	grid := booking.Grid{
		FirstHour:      cfg.Calendar.FirstSlotHour,
		LastHour:       cfg.Calendar.LastSlotHour,
		SessionMinutes: cfg.Calendar.SessionMinutes,
	}

	// Initialize Providers
	meetings, err := meeting.NewGoogleProvider(context.Background(), cfg.Meeting)
	if err != nil {
		logger.Error("Failed to initialize meeting provider", "error", err)
		log.Fatalf("Failed to initialize meeting provider: %v", err)
	}
	notifier := notify.NewSendGridNotifier(cfg.SendGrid)
	billingProvider := billing.NewStripeProvider(cfg.Stripe)

	// Initialize Services
	bookingSvc := service.NewBookingService(store, cal, clock, grid, meetings, notifier)
	availabilitySvc := service.NewAvailabilityService(store, cal, clock, grid)
	blockSvc := service.NewBlockService(store, cal, clock, meetings, notifier)
	renewalSvc := service.NewRenewalService(store, clock)
	subscriptionSvc := service.NewSubscriptionService(store, clock, billingProvider)
	packSvc := service.NewPackService(store, cal, clock)
	settingsSvc := service.NewSettingsService(store)
	accountSvc := service.NewAccountService(store, clock)

	// Set up HTTP server
	router := mux.NewRouter()
	httpapi.RegisterBookingRoutes(router, bookingSvc, availabilitySvc)
	httpapi.RegisterAccountRoutes(router, accountSvc, subscriptionSvc)
	httpapi.RegisterAdminRoutes(router, blockSvc, subscriptionSvc, packSvc, settingsSvc)
	httpapi.RegisterBillingRoutes(router, renewalSvc, cfg.Stripe.WebhookSecret)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
