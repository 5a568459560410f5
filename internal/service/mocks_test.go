package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

// MockStore implements repository.Store. InTx runs the callback against
// the mock itself, so expectations cover in-transaction calls too.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

// UserRepository

func (m *MockStore) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockStore) GetUserByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockStore) ListUsersByIDs(ctx context.Context, ids []int32) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// PlanRepository

func (m *MockStore) CreatePlan(ctx context.Context, plan *domain.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}
func (m *MockStore) GetPlanByID(ctx context.Context, id int32) (*domain.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}
func (m *MockStore) FindPlanByExternalRef(ctx context.Context, ref string) (*domain.Plan, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}
func (m *MockStore) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}

// SubscriptionRepository

func (m *MockStore) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockStore) FindActiveSubscriptionByUser(ctx context.Context, userID int32) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}
func (m *MockStore) FindActiveSubscriptionByUserForUpdate(ctx context.Context, userID int32) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}
func (m *MockStore) FindSubscriptionByExternalRefForUpdate(ctx context.Context, ref string) (*domain.Subscription, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}
func (m *MockStore) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockStore) ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}
func (m *MockStore) AdjustSubscriptionUsage(ctx context.Context, subscriptionID int32, delta int32) error {
	args := m.Called(ctx, subscriptionID, delta)
	return args.Error(0)
}
func (m *MockStore) DeleteStalePendingSubscriptions(ctx context.Context, userID int32) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockStore) PurgePendingSubscriptionsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStore) CreateCredit(ctx context.Context, credit *domain.SubscriptionCredit) error {
	args := m.Called(ctx, credit)
	return args.Error(0)
}
func (m *MockStore) SumCreditDays(ctx context.Context, subscriptionID int32) (int32, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockStore) ListCreditsBySubscription(ctx context.Context, subscriptionID int32) ([]domain.SubscriptionCredit, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubscriptionCredit), args.Error(1)
}
func (m *MockStore) DeleteCreditsBySubscription(ctx context.Context, subscriptionID int32) (int64, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStore) DeleteCreditsByBlock(ctx context.Context, blockID int32) (int64, error) {
	args := m.Called(ctx, blockID)
	return args.Get(0).(int64), args.Error(1)
}

// PackRepository

func (m *MockStore) CreatePack(ctx context.Context, pack *domain.Pack) error {
	args := m.Called(ctx, pack)
	return args.Error(0)
}
func (m *MockStore) FindActivePackByUser(ctx context.Context, userID int32, now time.Time) (*domain.Pack, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pack), args.Error(1)
}
func (m *MockStore) FindActivePackByUserForUpdate(ctx context.Context, userID int32, now time.Time) (*domain.Pack, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pack), args.Error(1)
}
func (m *MockStore) AdjustPackSessions(ctx context.Context, packID int32, delta int32, topUp bool) error {
	args := m.Called(ctx, packID, delta, topUp)
	return args.Error(0)
}
func (m *MockStore) UpdatePackExpiry(ctx context.Context, packID int32, expiresAt time.Time) error {
	args := m.Called(ctx, packID, expiresAt)
	return args.Error(0)
}
func (m *MockStore) ListPacksExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Pack, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Pack), args.Error(1)
}

// SessionRepository

func (m *MockStore) CreateSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *MockStore) GetSessionByID(ctx context.Context, id int32) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockStore) GetSessionByIDForUpdate(ctx context.Context, id int32) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockStore) UpdateSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *MockStore) SetSessionMeeting(ctx context.Context, sessionID int32, eventID, joinLink string) error {
	args := m.Called(ctx, sessionID, eventID, joinLink)
	return args.Error(0)
}
func (m *MockStore) FindPendingSessionByUser(ctx context.Context, userID int32) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockStore) UserHasSessionBetween(ctx context.Context, userID int32, from, to time.Time) (bool, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Bool(0), args.Error(1)
}
func (m *MockStore) CountScheduledSessionsBetween(ctx context.Context, from, to time.Time) (int32, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockStore) ListScheduledSessionsBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}
func (m *MockStore) ListScheduledSessionsBetweenForUpdate(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}
func (m *MockStore) ListUserSessionsBetween(ctx context.Context, userID int32, from, to time.Time) ([]domain.Session, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}
func (m *MockStore) CompleteElapsedSessions(ctx context.Context, endedBefore time.Time) (int64, error) {
	args := m.Called(ctx, endedBefore)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStore) ListScheduledSessionsWithoutMeeting(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

// BlockRepository

func (m *MockStore) CreateBlock(ctx context.Context, block *domain.MentorBlock) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}
func (m *MockStore) GetBlockByID(ctx context.Context, id int32) (*domain.MentorBlock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MentorBlock), args.Error(1)
}
func (m *MockStore) DeleteBlock(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockStore) ListBlocks(ctx context.Context) ([]domain.MentorBlock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MentorBlock), args.Error(1)
}
func (m *MockStore) ListBlocksOverlapping(ctx context.Context, startDate, endDate string) ([]domain.MentorBlock, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MentorBlock), args.Error(1)
}
func (m *MockStore) BlockCoversDate(ctx context.Context, localDate string) (bool, error) {
	args := m.Called(ctx, localDate)
	return args.Bool(0), args.Error(1)
}
func (m *MockStore) MarkBlockNotified(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CouponRepository

func (m *MockStore) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}
func (m *MockStore) GetCouponByCodeForUpdate(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}
func (m *MockStore) IncrementCouponRedemptions(ctx context.Context, couponID int32) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}
func (m *MockStore) RecordCouponRedemption(ctx context.Context, couponID, userID int32) error {
	args := m.Called(ctx, couponID, userID)
	return args.Error(0)
}

// ConfigRepository

func (m *MockStore) GetMentorConfig(ctx context.Context) (*domain.MentorConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MentorConfig), args.Error(1)
}
func (m *MockStore) UpdateMentorConfig(ctx context.Context, cfg *domain.MentorConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// BillingEventRepository

func (m *MockStore) MarkBillingEventProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockMeetingProvider

type MockMeetingProvider struct {
	mock.Mock
}

func (m *MockMeetingProvider) CreateMeeting(ctx context.Context, title, description string, start, end time.Time, attendeeEmail string) (string, string, error) {
	args := m.Called(ctx, title, description, start, end, attendeeEmail)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockMeetingProvider) DeleteMeeting(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockNotifier

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipientEmail, recipientName, subject, body string) error {
	args := m.Called(ctx, recipientEmail, recipientName, subject, body)
	return args.Error(0)
}

// MockBillingProvider

type MockBillingProvider struct {
	mock.Mock
}

func (m *MockBillingProvider) CreateSubscription(ctx context.Context, planExternalRef string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, planExternalRef, metadata)
	return args.String(0), args.Error(1)
}
func (m *MockBillingProvider) CancelSubscription(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}
func (m *MockBillingProvider) Refund(ctx context.Context, paymentRef string, amountCents int64) error {
	args := m.Called(ctx, paymentRef, amountCents)
	return args.Error(0)
}
