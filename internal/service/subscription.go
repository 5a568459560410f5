package service

import (
	"context"
	"fmt"
	"strconv"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

type subscriptionService struct {
	store   repository.Store
	clock   calendar.Clock
	billing BillingProvider
}

func NewSubscriptionService(store repository.Store, clock calendar.Clock, billing BillingProvider) SubscriptionService {
	return &subscriptionService{store: store, clock: clock, billing: billing}
}

// Subscribe creates a pending subscription and its external billing
// counterpart. The subscription activates when the provider's activation
// event arrives. Stale pendings from abandoned attempts are purged first.
func (s *subscriptionService) Subscribe(ctx context.Context, userID, planID int32) (*domain.Subscription, error) {
	now := s.clock.Now()

	plan, err := s.store.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.FindActiveSubscriptionByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active subscription: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("%w: user %d already has an active subscription", domain.ErrConflict, userID)
	}

	// External creation stays outside the transaction so provider
	// latency never holds a lock.
	externalID, err := s.billing.CreateSubscription(ctx, plan.ExternalPriceRef, map[string]string{
		"customer_id": user.ExternalCustomerRef,
		"user_id":     strconv.Itoa(int(userID)),
		"plan_id":     strconv.Itoa(int(planID)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create external subscription: %w", err)
	}

	periodEnd := now.AddDate(0, 1, 0)
	if plan.Period == domain.PlanPeriodWeekly {
		periodEnd = now.AddDate(0, 0, 7)
	}

	sub := &domain.Subscription{
		UserID:             userID,
		PlanID:             planID,
		Status:             domain.SubscriptionStatusPending,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   periodEnd,
		ExternalSubRef:     externalID,
	}
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.DeleteStalePendingSubscriptions(ctx, userID); err != nil {
			return fmt.Errorf("failed to purge stale pending subscriptions: %w", err)
		}
		return tx.CreateSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// RefundLatestPayment refunds the most recent charge on the user's
// active subscription. Operator remediation for disputed or mistaken
// charges; an amount of zero refunds the full charge.
func (s *subscriptionService) RefundLatestPayment(ctx context.Context, userID int32, amountCents int64) error {
	if amountCents < 0 {
		return fmt.Errorf("%w: refund amount cannot be negative", domain.ErrInvalidState)
	}

	sub, err := s.store.FindActiveSubscriptionByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil {
		return domain.ErrNotFound
	}
	if sub.LatestPaymentRef == "" {
		return fmt.Errorf("%w: subscription %d has no recorded payment", domain.ErrInvalidState, sub.ID)
	}

	return s.billing.Refund(ctx, sub.LatestPaymentRef, amountCents)
}

func (s *subscriptionService) CreatePlan(ctx context.Context, plan *domain.Plan) error {
	if plan.Name == "" {
		return fmt.Errorf("%w: plan name is required", domain.ErrInvalidState)
	}
	if plan.SessionsPerPeriod <= 0 {
		return fmt.Errorf("%w: plan must grant at least one session per period", domain.ErrInvalidState)
	}
	if plan.Period != domain.PlanPeriodWeekly && plan.Period != domain.PlanPeriodMonthly {
		return fmt.Errorf("%w: unknown plan period %q", domain.ErrInvalidState, plan.Period)
	}
	return s.store.CreatePlan(ctx, plan)
}

func (s *subscriptionService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.store.ListPlans(ctx)
}

// CancelSubscription cancels the external subscription first, then marks
// the local row cancelled. The billing provider's own cancellation event
// later arriving is deduplicated as usual.
func (s *subscriptionService) CancelSubscription(ctx context.Context, userID int32) error {
	now := s.clock.Now()

	sub, err := s.store.FindActiveSubscriptionByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil {
		return domain.ErrNotFound
	}

	if sub.ExternalSubRef != "" {
		if err := s.billing.CancelSubscription(ctx, sub.ExternalSubRef); err != nil {
			return fmt.Errorf("failed to cancel external subscription %s: %w", sub.ExternalSubRef, err)
		}
	}

	return s.store.InTx(ctx, func(tx repository.Store) error {
		locked, err := tx.FindActiveSubscriptionByUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if locked == nil {
			return nil // already cancelled concurrently
		}
		locked.Status = domain.SubscriptionStatusCancelled
		locked.CancelledAt = &now
		return tx.UpdateSubscription(ctx, locked)
	})
}
