package domain

import (
	"errors"
	"fmt"
)

// DenyReason is the typed outcome of a failed booking validation. These
// are expected results mapped to user-facing messages by the API layer,
// not faults.
type DenyReason string

const (
	DenyNoSessionSource      DenyReason = "NO_SESSION_SOURCE"
	DenyNoSessionsRemaining  DenyReason = "NO_SESSIONS_REMAINING"
	DenyHasPendingSession    DenyReason = "HAS_PENDING_SESSION"
	DenySlotInPast           DenyReason = "SLOT_IN_PAST"
	DenyInvalidTimeSlot      DenyReason = "INVALID_TIME_SLOT"
	DenyOutsideBookingWindow DenyReason = "OUTSIDE_BOOKING_WINDOW"
	DenyWeekendNotAllowed    DenyReason = "WEEKEND_NOT_ALLOWED"
	DenyMentorBlocked        DenyReason = "MENTOR_BLOCKED"
	DenyAlreadyBookedToday   DenyReason = "ALREADY_BOOKED_TODAY"
	DenyMentorAtCapacity     DenyReason = "MENTOR_AT_CAPACITY"
)

// BookingDenied carries the first failed validation check
type BookingDenied struct {
	Reason DenyReason
}

func (e *BookingDenied) Error() string {
	return fmt.Sprintf("booking denied: %s", e.Reason)
}

// Deny wraps a reason as an error
func Deny(reason DenyReason) error {
	return &BookingDenied{Reason: reason}
}

// DeniedReason extracts the denial reason from an error chain
func DeniedReason(err error) (DenyReason, bool) {
	var d *BookingDenied
	if errors.As(err, &d) {
		return d.Reason, true
	}
	return "", false
}

var (
	// ErrNotFound covers missing sessions, blocks, coupons and packs
	ErrNotFound = errors.New("not found")
	// ErrInvalidState covers operations against an entity in the wrong
	// status, e.g. cancelling a non-scheduled session
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict covers overlapping blocks, duplicate coupon codes and
	// double redemptions
	ErrConflict = errors.New("conflict")
	// ErrUnavailable is surfaced after transaction retries are exhausted
	ErrUnavailable = errors.New("temporarily unavailable")
)
