package jobs

import (
	"context"
	"fmt"
	"time"

	"mentorhub-backend/internal/logger"
)

// CompleteElapsedSessions marks scheduled sessions as COMPLETED once
// their slot has fully passed. Completion is the only transition that
// happens without a user or mentor action.
func (jr *JobRunner) CompleteElapsedSessions() {
	jr.runWithRecovery("CompleteElapsedSessions", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		count, err := jr.store.CompleteElapsedSessions(ctx, now)
		if err != nil {
			logger.Error("Failed to complete elapsed sessions", "error", err)
			return
		}
		if count > 0 {
			logger.Info("Completed elapsed sessions", "count", count)
		}
	})
}

// RetryMissingMeetingLinks provisions meetings for scheduled sessions
// whose post-commit meeting creation failed at booking time.
func (jr *JobRunner) RetryMissingMeetingLinks() {
	jr.runWithRecovery("RetryMissingMeetingLinks", func() {
		ctx := context.Background()

		sessions, err := jr.store.ListScheduledSessionsWithoutMeeting(ctx)
		if err != nil {
			logger.Error("Failed to list sessions without meetings", "error", err)
			return
		}

		retried := 0
		for i := range sessions {
			sess := &sessions[i]
			user, err := jr.store.GetUserByID(ctx, sess.UserID)
			if err != nil {
				logger.Error("Failed to load session attendee", "session_id", sess.ID, "error", err)
				continue
			}

			end := sess.ScheduledAt.Add(time.Duration(sess.DurationMinutes) * time.Minute)
			eventID, joinLink, err := jr.meetings.CreateMeeting(ctx,
				fmt.Sprintf("Mentoring session with %s", user.Name),
				"1:1 mentoring session",
				sess.ScheduledAt, end, user.Email)
			if err != nil {
				logger.Error("Failed to provision meeting", "session_id", sess.ID, "error", err)
				continue
			}
			if err := jr.store.SetSessionMeeting(ctx, sess.ID, eventID, joinLink); err != nil {
				logger.Error("Failed to store meeting link", "session_id", sess.ID, "error", err)
				continue
			}
			retried++
		}
		if retried > 0 {
			logger.Info("Provisioned missing meeting links", "count", retried)
		}
	})
}
