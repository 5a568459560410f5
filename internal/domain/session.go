package domain

import "time"

type SessionStatus string

const (
	SessionStatusScheduled         SessionStatus = "SCHEDULED"
	SessionStatusCompleted         SessionStatus = "COMPLETED"
	SessionStatusCancelledByUser   SessionStatus = "CANCELLED_BY_USER"
	SessionStatusCancelledByMentor SessionStatus = "CANCELLED_BY_MENTOR"
	SessionStatusNoShow            SessionStatus = "NO_SHOW"
)

// Session is one scheduled unit of mentoring. Exactly one of
// SubscriptionID / PackID is set at creation (the debited source); a
// mentor-forced cancellation may leave both cleared after crediting.
type Session struct {
	ID              int32         `json:"id"`
	UserID          int32         `json:"user_id"`
	SubscriptionID  *int32        `json:"subscription_id,omitempty"`
	PackID          *int32        `json:"pack_id,omitempty"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	DurationMinutes int32         `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
	LateCancel      bool          `json:"late_cancel"`
	MeetingEventID  string        `json:"meeting_event_id"`
	MeetingJoinLink string        `json:"meeting_join_link"`
	CreatedOn       time.Time     `json:"created_on"`
	UpdatedOn       time.Time     `json:"updated_on"`
}

// DebitSourceKind tags which entitlement a session was debited from
type DebitSourceKind string

const (
	DebitSubscription DebitSourceKind = "SUBSCRIPTION"
	DebitPack         DebitSourceKind = "PACK"
)

// DebitSource is the tagged union form of the subscription-xor-pack pair
// persisted on a session
type DebitSource struct {
	Kind DebitSourceKind `json:"kind"`
	ID   int32           `json:"id"`
}

// Source returns the session's debit source, or false when a forced
// cancellation already detached it
func (s *Session) Source() (DebitSource, bool) {
	switch {
	case s.SubscriptionID != nil:
		return DebitSource{Kind: DebitSubscription, ID: *s.SubscriptionID}, true
	case s.PackID != nil:
		return DebitSource{Kind: DebitPack, ID: *s.PackID}, true
	default:
		return DebitSource{}, false
	}
}
