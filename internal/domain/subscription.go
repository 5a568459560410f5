package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
)

// Subscription is one user's recurring session entitlement. At most one
// ACTIVE and at most one PENDING subscription exist per user.
type Subscription struct {
	ID                     int32              `json:"id"`
	UserID                 int32              `json:"user_id"`
	PlanID                 int32              `json:"plan_id"`
	Status                 SubscriptionStatus `json:"status"`
	CurrentPeriodStart     time.Time          `json:"current_period_start"`
	CurrentPeriodEnd       time.Time          `json:"current_period_end"`
	SessionsUsedThisPeriod int32              `json:"sessions_used_this_period"`
	// CarryOverSessions are sessions granted ahead of the period's base
	// allotment, consumed before period-based sessions.
	CarryOverSessions   int32      `json:"carry_over_sessions"`
	PendingPlanChangeID *int32     `json:"pending_plan_change_id,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	ExternalSubRef      string     `json:"external_sub_ref"`
	LatestPaymentRef    string     `json:"latest_payment_ref"`
	CreatedOn           time.Time  `json:"created_on"`
	UpdatedOn           time.Time  `json:"updated_on"`
}

// SessionsRemaining is the subscription's unconsumed entitlement for the
// current period
func (s *Subscription) SessionsRemaining(plan *Plan) int32 {
	remaining := plan.SessionsPerPeriod + s.CarryOverSessions - s.SessionsUsedThisPeriod
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SubscriptionCredit is a bonus-day grant tied to a subscription and
// usually to the mentor block that caused it. Credits are consumed in
// full at renewal or revoked when their block is deleted.
type SubscriptionCredit struct {
	ID             int32     `json:"id"`
	SubscriptionID int32     `json:"subscription_id"`
	BlockID        *int32    `json:"block_id,omitempty"`
	Days           int32     `json:"days"`
	Reason         string    `json:"reason"`
	CreatedOn      time.Time `json:"created_on"`
}
