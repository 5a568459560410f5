package repository

import (
	"context"
	"time"

	"mentorhub-backend/internal/domain"
)

// Conventions: Get* returns domain.ErrNotFound when the row is missing;
// Find* returns (nil, nil). *ForUpdate variants take a row lock and are
// only meaningful inside InTx.

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int32) (*domain.User, error)
	ListUsersByIDs(ctx context.Context, ids []int32) ([]domain.User, error)
}

type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *domain.Plan) error
	GetPlanByID(ctx context.Context, id int32) (*domain.Plan, error)
	FindPlanByExternalRef(ctx context.Context, ref string) (*domain.Plan, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
}

type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub *domain.Subscription) error
	FindActiveSubscriptionByUser(ctx context.Context, userID int32) (*domain.Subscription, error)
	FindActiveSubscriptionByUserForUpdate(ctx context.Context, userID int32) (*domain.Subscription, error)
	FindSubscriptionByExternalRefForUpdate(ctx context.Context, ref string) (*domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *domain.Subscription) error
	// ListActiveSubscriptions returns active subscriptions in primary key
	// order; block creation relies on the stable order to avoid
	// lock-ordering deadlocks.
	ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	// AdjustSubscriptionUsage moves sessions_used_this_period by delta,
	// floored at zero. The floor lives here once; every credit path goes
	// through it.
	AdjustSubscriptionUsage(ctx context.Context, subscriptionID int32, delta int32) error
	DeleteStalePendingSubscriptions(ctx context.Context, userID int32) error
	PurgePendingSubscriptionsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	CreateCredit(ctx context.Context, credit *domain.SubscriptionCredit) error
	SumCreditDays(ctx context.Context, subscriptionID int32) (int32, error)
	ListCreditsBySubscription(ctx context.Context, subscriptionID int32) ([]domain.SubscriptionCredit, error)
	DeleteCreditsBySubscription(ctx context.Context, subscriptionID int32) (int64, error)
	DeleteCreditsByBlock(ctx context.Context, blockID int32) (int64, error)
}

type PackRepository interface {
	CreatePack(ctx context.Context, pack *domain.Pack) error
	FindActivePackByUser(ctx context.Context, userID int32, now time.Time) (*domain.Pack, error)
	FindActivePackByUserForUpdate(ctx context.Context, userID int32, now time.Time) (*domain.Pack, error)
	// AdjustPackSessions moves sessions_remaining by delta, floored at
	// zero; positive deltas also extend sessions_total for top-ups when
	// topUp is set.
	AdjustPackSessions(ctx context.Context, packID int32, delta int32, topUp bool) error
	UpdatePackExpiry(ctx context.Context, packID int32, expiresAt time.Time) error
	ListPacksExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Pack, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByID(ctx context.Context, id int32) (*domain.Session, error)
	GetSessionByIDForUpdate(ctx context.Context, id int32) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	SetSessionMeeting(ctx context.Context, sessionID int32, eventID, joinLink string) error
	FindPendingSessionByUser(ctx context.Context, userID int32) (*domain.Session, error)
	UserHasSessionBetween(ctx context.Context, userID int32, from, to time.Time) (bool, error)
	CountScheduledSessionsBetween(ctx context.Context, from, to time.Time) (int32, error)
	ListScheduledSessionsBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error)
	// ListScheduledSessionsBetweenForUpdate locks the session rows before
	// any subscription or pack rows are touched (session-first lock order).
	ListScheduledSessionsBetweenForUpdate(ctx context.Context, from, to time.Time) ([]domain.Session, error)
	ListUserSessionsBetween(ctx context.Context, userID int32, from, to time.Time) ([]domain.Session, error)
	CompleteElapsedSessions(ctx context.Context, endedBefore time.Time) (int64, error)
	ListScheduledSessionsWithoutMeeting(ctx context.Context) ([]domain.Session, error)
}

type BlockRepository interface {
	CreateBlock(ctx context.Context, block *domain.MentorBlock) error
	GetBlockByID(ctx context.Context, id int32) (*domain.MentorBlock, error)
	DeleteBlock(ctx context.Context, id int32) error
	ListBlocks(ctx context.Context) ([]domain.MentorBlock, error)
	ListBlocksOverlapping(ctx context.Context, startDate, endDate string) ([]domain.MentorBlock, error)
	BlockCoversDate(ctx context.Context, localDate string) (bool, error)
	MarkBlockNotified(ctx context.Context, id int32) error
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *domain.Coupon) error
	GetCouponByCodeForUpdate(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementCouponRedemptions(ctx context.Context, couponID int32) error
	// RecordCouponRedemption returns domain.ErrConflict when the user has
	// already redeemed this coupon.
	RecordCouponRedemption(ctx context.Context, couponID, userID int32) error
}

type ConfigRepository interface {
	GetMentorConfig(ctx context.Context) (*domain.MentorConfig, error)
	UpdateMentorConfig(ctx context.Context, cfg *domain.MentorConfig) error
}

type BillingEventRepository interface {
	// MarkBillingEventProcessed stores the processed-event marker and
	// returns domain.ErrConflict when the event was already handled.
	MarkBillingEventProcessed(ctx context.Context, eventID string) error
}

// Store aggregates every repository plus the transaction runner. All
// entitlement-mutating operations run through InTx; the callback receives
// a Store bound to the transaction.
type Store interface {
	UserRepository
	PlanRepository
	SubscriptionRepository
	PackRepository
	SessionRepository
	BlockRepository
	CouponRepository
	ConfigRepository
	BillingEventRepository

	InTx(ctx context.Context, fn func(Store) error) error
}
