package domain

import "time"

// Pack is a prepaid session bundle independent of any subscription.
// A user holds at most one active pack; top-ups add sessions to it.
// Packs always grant weekend access and never roll over past expiry.
type Pack struct {
	ID                int32     `json:"id"`
	UserID            int32     `json:"user_id"`
	SessionsTotal     int32     `json:"sessions_total"`
	SessionsRemaining int32     `json:"sessions_remaining"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedOn         time.Time `json:"created_on"`
	UpdatedOn         time.Time `json:"updated_on"`
}

// Active reports whether the pack is usable at the given instant
func (p *Pack) Active(now time.Time) bool {
	return p.ExpiresAt.After(now)
}
