package service

import (
	"context"
	"time"

	"mentorhub-backend/internal/booking"
	"mentorhub-backend/internal/domain"
)

// BookingResult is returned to the caller for client display
type BookingResult struct {
	Session           *domain.Session    `json:"session"`
	Source            domain.DebitSource `json:"source"`
	SessionsRemaining int32              `json:"sessions_remaining"`
}

// CancelResult reports whether the cancellation was too late to credit
type CancelResult struct {
	LateCancel bool `json:"late_cancel"`
}

// BlockResult summarizes the cascade a new mentor block triggered
type BlockResult struct {
	Block                 *domain.MentorBlock `json:"block"`
	CreditedSubscriptions int                 `json:"credited_subscriptions"`
	CancelledSessions     []domain.Session    `json:"cancelled_sessions"`
}

type BookingService interface {
	Book(ctx context.Context, userID int32, requestedAt time.Time) (*BookingResult, error)
	Cancel(ctx context.Context, userID, sessionID int32) (*CancelResult, error)
	GetSession(ctx context.Context, userID, sessionID int32) (*domain.Session, error)
}

type AvailabilityService interface {
	GetSchedule(ctx context.Context, userID int32) ([]booking.DaySchedule, error)
}

type BlockService interface {
	CreateBlock(ctx context.Context, startDate, endDate, reason string) (*BlockResult, error)
	DeleteBlock(ctx context.Context, blockID int32) error
	ListBlocks(ctx context.Context) ([]domain.MentorBlock, error)
}

type RenewalService interface {
	// HandleBillingEvent applies one billing-provider event. Duplicate
	// deliveries are a no-op success; the returned carry-over is the
	// session count converted from bonus days on a renewal.
	HandleBillingEvent(ctx context.Context, event *domain.BillingEvent) (int32, error)
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, planID int32) (*domain.Subscription, error)
	CancelSubscription(ctx context.Context, userID int32) error
	RefundLatestPayment(ctx context.Context, userID int32, amountCents int64) error
	CreatePlan(ctx context.Context, plan *domain.Plan) error
	ListPlans(ctx context.Context) ([]domain.Plan, error)
}

// Account is a user's entitlement snapshot for client display
type Account struct {
	User         *domain.User                `json:"user"`
	Subscription *domain.Subscription        `json:"subscription,omitempty"`
	Plan         *domain.Plan                `json:"plan,omitempty"`
	BonusDays    int32                       `json:"bonus_days"`
	Credits      []domain.SubscriptionCredit `json:"credits,omitempty"`
	Pack         *domain.Pack                `json:"pack,omitempty"`
}

type AccountService interface {
	CreateUser(ctx context.Context, name, email string) (*domain.User, error)
	GetAccount(ctx context.Context, userID int32) (*Account, error)
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*domain.MentorConfig, error)
	UpdateSettings(ctx context.Context, cfg *domain.MentorConfig) error
}

type PackService interface {
	CreateCoupon(ctx context.Context, sessions, maxRedemptions int32, expiresAt *time.Time) (*domain.Coupon, error)
	RedeemCoupon(ctx context.Context, userID int32, code string) (*domain.Pack, error)
}

// MeetingProvider provisions meetings for booked slots. Failures are
// logged and never block or roll back a booking.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, title, description string, start, end time.Time, attendeeEmail string) (eventID, joinLink string, err error)
	DeleteMeeting(ctx context.Context, eventID string) error
}

// BillingProvider is the external payment capability
type BillingProvider interface {
	CreateSubscription(ctx context.Context, planExternalRef string, metadata map[string]string) (externalID string, err error)
	CancelSubscription(ctx context.Context, externalID string) error
	Refund(ctx context.Context, paymentRef string, amountCents int64) error
}

// Notifier delivers fire-and-forget notifications; failures are logged
// per recipient and never abort a batch
type Notifier interface {
	Send(ctx context.Context, recipientEmail, recipientName, subject, body string) error
}
