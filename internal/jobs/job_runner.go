package jobs

import (
	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/config"
	"mentorhub-backend/internal/logger"
	"mentorhub-backend/internal/repository"
	"mentorhub-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    repository.Store
	cal      *calendar.Calendar
	clock    calendar.Clock
	meetings service.MeetingProvider
	notifier service.Notifier
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Store, cal *calendar.Calendar, clock calendar.Clock, meetings service.MeetingProvider, notifier service.Notifier, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		cal:      cal,
		clock:    clock,
		meetings: meetings,
		notifier: notifier,
		config:   cfg,
	}
}

// Config returns the application configuration
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

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.CompleteElapsedSessions()
	jr.RetryMissingMeetingLinks()
	jr.PurgeStalePendingSubscriptions()
	jr.SendPackExpiryReminders()
}
