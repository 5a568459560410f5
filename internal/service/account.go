package service

import (
	"context"
	"fmt"
	"strings"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

type accountService struct {
	store repository.Store
	clock calendar.Clock
}

func NewAccountService(store repository.Store, clock calendar.Clock) AccountService {
	return &accountService{store: store, clock: clock}
}

func (s *accountService) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: name and a valid email are required", domain.ErrInvalidState)
	}
	user := &domain.User{Name: name, Email: email}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetAccount assembles the user's entitlement snapshot: active
// subscription with its plan and accrued bonus-day credits, plus the
// active pack if any.
func (s *accountService) GetAccount(ctx context.Context, userID int32) (*Account, error) {
	now := s.clock.Now()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	acct := &Account{User: user}

	acct.Subscription, err = s.store.FindActiveSubscriptionByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if acct.Subscription != nil {
		acct.Plan, err = s.store.GetPlanByID(ctx, acct.Subscription.PlanID)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan %d: %w", acct.Subscription.PlanID, err)
		}
		acct.Credits, err = s.store.ListCreditsBySubscription(ctx, acct.Subscription.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load credits: %w", err)
		}
		for i := range acct.Credits {
			acct.BonusDays += acct.Credits[i].Days
		}
	}

	acct.Pack, err = s.store.FindActivePackByUser(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load pack: %w", err)
	}
	return acct, nil
}
