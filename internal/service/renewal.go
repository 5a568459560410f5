package service

import (
	"context"
	"errors"
	"fmt"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/logger"
	"mentorhub-backend/internal/repository"
)

type renewalService struct {
	store repository.Store
	clock calendar.Clock
}

func NewRenewalService(store repository.Store, clock calendar.Clock) RenewalService {
	return &renewalService{store: store, clock: clock}
}

// ComputeCarryOver converts accumulated bonus days into next-period
// sessions: the carry-over is the expiring period's unconsumed sessions,
// capped by the bonus days. Bonus days beyond the cap are forfeited.
func ComputeCarryOver(planSessions, carryOverSessions, sessionsUsed, bonusDays int32) int32 {
	if bonusDays <= 0 {
		return 0
	}
	remaining := planSessions + carryOverSessions - sessionsUsed
	if remaining < 0 {
		remaining = 0
	}
	if bonusDays < remaining {
		return bonusDays
	}
	return remaining
}

// HandleBillingEvent applies one at-least-once billing notification.
// The processed-event marker is written inside the same transaction as
// the state change, so a duplicate delivery is a no-op success.
func (s *renewalService) HandleBillingEvent(ctx context.Context, event *domain.BillingEvent) (int32, error) {
	now := s.clock.Now()
	var carryOver int32
	duplicate := false

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.MarkBillingEventProcessed(ctx, event.EventID); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				duplicate = true
				return nil
			}
			return fmt.Errorf("failed to record billing event: %w", err)
		}

		sub, err := tx.FindSubscriptionByExternalRefForUpdate(ctx, event.ExternalSubRef)
		if err != nil {
			return fmt.Errorf("failed to load subscription for %s: %w", event.ExternalSubRef, err)
		}
		if sub == nil {
			logger.Warn("Billing event for unknown subscription",
				"event_id", event.EventID, "external_ref", event.ExternalSubRef)
			return nil
		}

		switch event.Type {
		case domain.BillingEventRenewed, domain.BillingEventActivated:
			carryOver, err = s.applyRenewal(ctx, tx, sub, event)
			return err
		case domain.BillingEventCancelled:
			sub.Status = domain.SubscriptionStatusCancelled
			sub.CancelledAt = &now
			return tx.UpdateSubscription(ctx, sub)
		case domain.BillingEventPastDue:
			sub.Status = domain.SubscriptionStatusPastDue
			return tx.UpdateSubscription(ctx, sub)
		default:
			logger.Warn("Ignoring unsupported billing event type",
				"event_id", event.EventID, "type", event.Type)
			return nil
		}
	})
	if err != nil {
		return 0, err
	}
	if duplicate {
		logger.Info("Duplicate billing event ignored", "event_id", event.EventID)
		return 0, nil
	}
	return carryOver, nil
}

func (s *renewalService) applyRenewal(ctx context.Context, tx repository.Store, sub *domain.Subscription, event *domain.BillingEvent) (int32, error) {
	bonusDays, err := tx.SumCreditDays(ctx, sub.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum credit days: %w", err)
	}
	plan, err := tx.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		return 0, fmt.Errorf("failed to load plan %d: %w", sub.PlanID, err)
	}

	carryOver := ComputeCarryOver(plan.SessionsPerPeriod, sub.CarryOverSessions, sub.SessionsUsedThisPeriod, bonusDays)

	sub.CurrentPeriodStart = event.PeriodStart
	sub.CurrentPeriodEnd = event.PeriodEnd
	sub.SessionsUsedThisPeriod = 0
	sub.CarryOverSessions = carryOver
	sub.Status = domain.SubscriptionStatusActive
	if event.PaymentRef != "" {
		sub.LatestPaymentRef = event.PaymentRef
	}

	// A plan change reported by the provider takes effect on renewal.
	if event.PlanRef != "" {
		reported, err := tx.FindPlanByExternalRef(ctx, event.PlanRef)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve plan ref %s: %w", event.PlanRef, err)
		}
		if reported != nil && reported.ID != sub.PlanID {
			sub.PlanID = reported.ID
			sub.PendingPlanChangeID = nil
		}
	}

	if err := tx.UpdateSubscription(ctx, sub); err != nil {
		return 0, fmt.Errorf("failed to update subscription %d: %w", sub.ID, err)
	}

	// Credits are consumed at renewal whether or not they converted;
	// bonus days beyond the cap are forfeited, not banked.
	if bonusDays > 0 {
		if _, err := tx.DeleteCreditsBySubscription(ctx, sub.ID); err != nil {
			return 0, fmt.Errorf("failed to consume credits for subscription %d: %w", sub.ID, err)
		}
	}

	logger.Info("Subscription period renewed",
		"subscription_id", sub.ID, "carry_over", carryOver, "bonus_days", bonusDays)
	return carryOver, nil
}
