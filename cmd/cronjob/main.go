package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/config"
	"mentorhub-backend/internal/jobs"
	"mentorhub-backend/internal/logger"
	"mentorhub-backend/internal/meeting"
	"mentorhub-backend/internal/notify"
	"mentorhub-backend/internal/repository/postgres"
	"mentorhub-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'complete-elapsed-sessions', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MentorHub Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Providers
	meetings, err := meeting.NewGoogleProvider(context.Background(), cfg.Meeting)
	if err != nil {
		logger.Error("Failed to initialize meeting provider", "error", err)
		log.Fatalf("Failed to initialize meeting provider: %v", err)
	}
	notifier := notify.NewSendGridNotifier(cfg.SendGrid)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, cal, clock, meetings, notifier, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "complete-elapsed-sessions":
		jobRunner.CompleteElapsedSessions()
	case "retry-missing-meeting-links":
		jobRunner.RetryMissingMeetingLinks()
	case "purge-stale-pending":
		jobRunner.PurgeStalePendingSubscriptions()
	case "send-pack-expiry-reminders":
		jobRunner.SendPackExpiryReminders()
	case "all":
		jobRunner.RunAllJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - complete-elapsed-sessions\n")
		fmt.Printf("  - retry-missing-meeting-links\n")
		fmt.Printf("  - purge-stale-pending\n")
		fmt.Printf("  - send-pack-expiry-reminders\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
