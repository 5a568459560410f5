package jobs

import (
	"context"
	"fmt"
	"time"

	"mentorhub-backend/internal/logger"
)

// stalePendingAge is how long a PENDING subscription may wait for its
// activation event before it is considered abandoned.
const stalePendingAge = 24 * time.Hour

// PurgeStalePendingSubscriptions deletes PENDING subscriptions whose
// checkout was never completed.
func (jr *JobRunner) PurgeStalePendingSubscriptions() {
	jr.runWithRecovery("PurgeStalePendingSubscriptions", func() {
		ctx := context.Background()
		cutoff := jr.clock.Now().Add(-stalePendingAge)

		count, err := jr.store.PurgePendingSubscriptionsOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge stale pending subscriptions", "error", err)
			return
		}
		if count > 0 {
			logger.Info("Purged stale pending subscriptions", "count", count)
		}
	})
}

// SendPackExpiryReminders notifies users whose pack expires within the
// next three days and still has sessions left.
func (jr *JobRunner) SendPackExpiryReminders() {
	jr.runWithRecovery("SendPackExpiryReminders", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		packs, err := jr.store.ListPacksExpiringBetween(ctx, now, now.AddDate(0, 0, 3))
		if err != nil {
			logger.Error("Failed to list expiring packs", "error", err)
			return
		}

		sent := 0
		for i := range packs {
			pack := &packs[i]
			if pack.SessionsRemaining <= 0 {
				continue
			}
			user, err := jr.store.GetUserByID(ctx, pack.UserID)
			if err != nil {
				logger.Error("Failed to load pack owner", "pack_id", pack.ID, "error", err)
				continue
			}
			body := fmt.Sprintf("Your session pack expires on %s with %d session(s) left. Book them before they lapse.",
				pack.ExpiresAt.In(jr.cal.Location()).Format("Mon, 02 Jan 2006"), pack.SessionsRemaining)
			if err := jr.notifier.Send(ctx, user.Email, user.Name, "Session pack expiring soon", body); err != nil {
				logger.Error("Failed to send pack expiry reminder", "pack_id", pack.ID, "user_id", user.ID, "error", err)
				continue
			}
			sent++
		}
		if sent > 0 {
			logger.Info("Sent pack expiry reminders", "count", sent)
		}
	})
}
