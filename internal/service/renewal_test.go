package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
)

func TestComputeCarryOver(t *testing.T) {
	tests := []struct {
		name              string
		planSessions      int32
		carryOverSessions int32
		sessionsUsed      int32
		bonusDays         int32
		want              int32
	}{
		{"NoBonusDays", 12, 0, 10, 0, 0},
		{"BonusCappedByRemaining", 12, 0, 10, 5, 2},
		{"RemainingCappedByBonus", 12, 0, 2, 3, 3},
		{"FullyUsedPeriod", 12, 0, 12, 5, 0},
		{"OverusedPeriodFloorsAtZero", 12, 0, 15, 5, 0},
		{"CarryOverCountsTowardRemaining", 12, 2, 10, 10, 4},
		{"NegativeBonus", 12, 0, 0, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCarryOver(tt.planSessions, tt.carryOverSessions, tt.sessionsUsed, tt.bonusDays)
			assert.Equal(t, tt.want, got)
		})
	}
}

func renewalFixture(now time.Time) (*MockStore, RenewalService) {
	store := &MockStore{}
	return store, NewRenewalService(store, calendar.FixedClock(now))
}

func renewalEvent(now time.Time) *domain.BillingEvent {
	return &domain.BillingEvent{
		EventID:        "evt_1",
		Type:           domain.BillingEventRenewed,
		ExternalSubRef: "sub_ext_1",
		PaymentRef:     "pi_1",
		PeriodStart:    now,
		PeriodEnd:      now.AddDate(0, 1, 0),
	}
}

func TestHandleBillingEvent_Renewal(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, svc := renewalFixture(now)
	event := renewalEvent(now)

	sub := &domain.Subscription{
		ID:                     9,
		PlanID:                 2,
		Status:                 domain.SubscriptionStatusActive,
		SessionsUsedThisPeriod: 10,
	}
	plan := &domain.Plan{ID: 2, SessionsPerPeriod: 12}

	store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
	store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(sub, nil)
	store.On("SumCreditDays", ctx, int32(9)).Return(int32(5), nil)
	store.On("GetPlanByID", ctx, int32(2)).Return(plan, nil)
	store.On("UpdateSubscription", ctx, sub).Return(nil)
	store.On("DeleteCreditsBySubscription", ctx, int32(9)).Return(int64(1), nil)

	carryOver, err := svc.HandleBillingEvent(ctx, event)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), carryOver)

	assert.Equal(t, int32(0), sub.SessionsUsedThisPeriod)
	assert.Equal(t, int32(2), sub.CarryOverSessions)
	assert.Equal(t, event.PeriodStart, sub.CurrentPeriodStart)
	assert.Equal(t, event.PeriodEnd, sub.CurrentPeriodEnd)
	assert.Equal(t, "pi_1", sub.LatestPaymentRef)
	store.AssertExpectations(t)
}

func TestHandleBillingEvent_RenewalWithoutCredits(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, svc := renewalFixture(now)

	sub := &domain.Subscription{ID: 9, PlanID: 2, SessionsUsedThisPeriod: 3}
	store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
	store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(sub, nil)
	store.On("SumCreditDays", ctx, int32(9)).Return(int32(0), nil)
	store.On("GetPlanByID", ctx, int32(2)).Return(&domain.Plan{ID: 2, SessionsPerPeriod: 12}, nil)
	store.On("UpdateSubscription", ctx, sub).Return(nil)

	carryOver, err := svc.HandleBillingEvent(ctx, renewalEvent(now))
	assert.NoError(t, err)
	assert.Equal(t, int32(0), carryOver)

	// No credits to consume, so no delete call
	store.AssertNotCalled(t, "DeleteCreditsBySubscription", ctx, int32(9))
}

func TestHandleBillingEvent_FullyUsedPeriodForfeitsBonusDays(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, svc := renewalFixture(now)

	// Entire allotment consumed: nothing to carry over, but the credits
	// are still spent.
	sub := &domain.Subscription{ID: 9, PlanID: 2, SessionsUsedThisPeriod: 12}
	store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
	store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(sub, nil)
	store.On("SumCreditDays", ctx, int32(9)).Return(int32(7), nil)
	store.On("GetPlanByID", ctx, int32(2)).Return(&domain.Plan{ID: 2, SessionsPerPeriod: 12}, nil)
	store.On("UpdateSubscription", ctx, sub).Return(nil)
	store.On("DeleteCreditsBySubscription", ctx, int32(9)).Return(int64(2), nil)

	carryOver, err := svc.HandleBillingEvent(ctx, renewalEvent(now))
	assert.NoError(t, err)
	assert.Equal(t, int32(0), carryOver)
	assert.Equal(t, int32(0), sub.CarryOverSessions)
	store.AssertExpectations(t)
}

func TestHandleBillingEvent_DuplicateIsNoOp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, svc := renewalFixture(now)

	store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(domain.ErrConflict)

	carryOver, err := svc.HandleBillingEvent(ctx, renewalEvent(now))
	assert.NoError(t, err)
	assert.Equal(t, int32(0), carryOver)
	store.AssertNotCalled(t, "FindSubscriptionByExternalRefForUpdate", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_UnknownSubscription(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, svc := renewalFixture(now)

	store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
	store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(nil, nil)

	_, err := svc.HandleBillingEvent(ctx, renewalEvent(now))
	assert.NoError(t, err)
	store.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_ActivationPromotesPending(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, svc := renewalFixture(now)

	sub := &domain.Subscription{ID: 9, PlanID: 2, Status: domain.SubscriptionStatusPending}
	event := renewalEvent(now)
	event.Type = domain.BillingEventActivated

	store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
	store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(sub, nil)
	store.On("SumCreditDays", ctx, int32(9)).Return(int32(0), nil)
	store.On("GetPlanByID", ctx, int32(2)).Return(&domain.Plan{ID: 2, SessionsPerPeriod: 12}, nil)
	store.On("UpdateSubscription", ctx, sub).Return(nil)

	_, err := svc.HandleBillingEvent(ctx, event)
	assert.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
}

func TestHandleBillingEvent_PlanChangeOnRenewal(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, svc := renewalFixture(now)

	pendingPlan := int32(5)
	sub := &domain.Subscription{ID: 9, PlanID: 2, PendingPlanChangeID: &pendingPlan}
	event := renewalEvent(now)
	event.PlanRef = "price_new"

	store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
	store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(sub, nil)
	store.On("SumCreditDays", ctx, int32(9)).Return(int32(0), nil)
	store.On("GetPlanByID", ctx, int32(2)).Return(&domain.Plan{ID: 2, SessionsPerPeriod: 12}, nil)
	store.On("FindPlanByExternalRef", ctx, "price_new").Return(&domain.Plan{ID: 5, SessionsPerPeriod: 20}, nil)
	store.On("UpdateSubscription", ctx, sub).Return(nil)

	_, err := svc.HandleBillingEvent(ctx, event)
	assert.NoError(t, err)
	assert.Equal(t, int32(5), sub.PlanID)
	assert.Nil(t, sub.PendingPlanChangeID)
}

func TestHandleBillingEvent_CancellationAndPastDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Cancelled", func(t *testing.T) {
		store, svc := renewalFixture(now)
		sub := &domain.Subscription{ID: 9, Status: domain.SubscriptionStatusActive}
		event := renewalEvent(now)
		event.Type = domain.BillingEventCancelled

		store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
		store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(sub, nil)
		store.On("UpdateSubscription", ctx, sub).Return(nil)

		_, err := svc.HandleBillingEvent(ctx, event)
		assert.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusCancelled, sub.Status)
		if assert.NotNil(t, sub.CancelledAt) {
			assert.Equal(t, now, *sub.CancelledAt)
		}
	})

	t.Run("PastDue", func(t *testing.T) {
		store, svc := renewalFixture(now)
		sub := &domain.Subscription{ID: 9, Status: domain.SubscriptionStatusActive}
		event := renewalEvent(now)
		event.Type = domain.BillingEventPastDue

		store.On("MarkBillingEventProcessed", ctx, "evt_1").Return(nil)
		store.On("FindSubscriptionByExternalRefForUpdate", ctx, "sub_ext_1").Return(sub, nil)
		store.On("UpdateSubscription", ctx, sub).Return(nil)

		_, err := svc.HandleBillingEvent(ctx, event)
		assert.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusPastDue, sub.Status)
	})
}
