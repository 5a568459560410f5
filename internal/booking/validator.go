package booking

import (
	"time"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
)

// Grid describes the fixed slot layout: hourly starts between FirstHour
// and LastHour inclusive, each SessionMinutes long.
type Grid struct {
	FirstHour      int
	LastHour       int
	SessionMinutes int
}

// Entitlements is the user's entitlement snapshot at validation time
type Entitlements struct {
	Subscription *domain.Subscription
	Plan         *domain.Plan // set iff Subscription is set
	Pack         *domain.Pack
	BonusDays    int32 // sum of the subscription's credit days
}

// State is the booking state the validator checks against, read from one
// consistent snapshot
type State struct {
	HasPendingSession bool  // user has any SCHEDULED session
	BookedOnDate      bool  // user has a SCHEDULED/COMPLETED session on the requested date
	MentorBookedCount int32 // mentor's SCHEDULED count on the requested date
	DateBlocked       bool  // requested date falls inside a mentor block
}

// subscriptionUsable reports whether the subscription can serve as an
// entitlement source at all: active, and not past its period end extended
// by accumulated bonus days.
func (e *Entitlements) subscriptionUsable(now time.Time) bool {
	if e.Subscription == nil || e.Plan == nil {
		return false
	}
	if e.Subscription.Status != domain.SubscriptionStatusActive {
		return false
	}
	effectiveEnd := e.Subscription.CurrentPeriodEnd.AddDate(0, 0, int(e.BonusDays))
	return now.Before(effectiveEnd)
}

func (e *Entitlements) packUsable(now time.Time) bool {
	return e.Pack != nil && e.Pack.Active(now) && e.Pack.SessionsRemaining > 0
}

// Validate decides whether a booking request is legal. Checks run in a
// fixed order and short-circuit on the first failure so callers always
// see a deterministic reason. Read-only; the debit itself happens inside
// the booking transaction against re-read, locked state.
func Validate(cal *calendar.Calendar, now time.Time, ent Entitlements, state State, requestedAt time.Time, cfg domain.MentorConfig, grid Grid) error {
	subUsable := ent.subscriptionUsable(now)
	packUsable := ent.packUsable(now)

	// 1. At least one entitlement source
	if !subUsable && !packUsable {
		return domain.Deny(domain.DenyNoSessionSource)
	}

	// 2. Combined remaining sessions across both sources
	var remaining int32
	if subUsable {
		remaining += ent.Subscription.SessionsRemaining(ent.Plan)
	}
	if packUsable {
		remaining += ent.Pack.SessionsRemaining
	}
	if remaining <= 0 {
		return domain.Deny(domain.DenyNoSessionsRemaining)
	}

	// 3. One pending session per user
	if state.HasPendingSession {
		return domain.Deny(domain.DenyHasPendingSession)
	}

	// 4. Slot must be in the future
	if !requestedAt.After(now) {
		return domain.Deny(domain.DenySlotInPast)
	}

	// 5. Slot must sit on a valid hour boundary
	hour, aligned := cal.SlotHour(requestedAt)
	if !aligned || hour < grid.FirstHour || hour > grid.LastHour {
		return domain.Deny(domain.DenyInvalidTimeSlot)
	}

	// 6. Local date between tomorrow and bookingWindowDays ahead inclusive
	today := cal.LocalDate(now)
	requestedDate := cal.LocalDate(requestedAt)
	windowEnd, err := cal.AddDays(today, int(cfg.BookingWindowDays))
	if err != nil {
		return err
	}
	if requestedDate <= today || requestedDate > windowEnd {
		return domain.Deny(domain.DenyOutsideBookingWindow)
	}

	// 7. Weekend access: plan grants it, or any active pack does
	if cal.IsWeekend(requestedAt) {
		planOK := subUsable && ent.Plan.WeekendAccess
		packOK := ent.Pack != nil && ent.Pack.Active(now)
		if !planOK && !packOK {
			return domain.Deny(domain.DenyWeekendNotAllowed)
		}
	}

	// 8. Mentor block
	if state.DateBlocked {
		return domain.Deny(domain.DenyMentorBlocked)
	}

	// 9. One session per user per calendar day
	if state.BookedOnDate {
		return domain.Deny(domain.DenyAlreadyBookedToday)
	}

	// 10. Mentor daily capacity
	if state.MentorBookedCount >= cfg.MaxSessionsPerDay {
		return domain.Deny(domain.DenyMentorAtCapacity)
	}

	return nil
}

// DetermineDebitSource picks which entitlement pays for the slot: the
// subscription when it has sessions left for the period and covers the
// day (weekday, or a plan with weekend access), otherwise the pack. A
// weekday-only subscriber booking a weekend slot is debited from the
// pack even when the subscription has capacity.
func DetermineDebitSource(cal *calendar.Calendar, now time.Time, ent Entitlements, requestedAt time.Time) (domain.DebitSource, bool) {
	weekend := cal.IsWeekend(requestedAt)
	if ent.subscriptionUsable(now) && ent.Subscription.SessionsRemaining(ent.Plan) > 0 {
		if !weekend || ent.Plan.WeekendAccess {
			return domain.DebitSource{Kind: domain.DebitSubscription, ID: ent.Subscription.ID}, true
		}
	}
	if ent.packUsable(now) {
		return domain.DebitSource{Kind: domain.DebitPack, ID: ent.Pack.ID}, true
	}
	return domain.DebitSource{}, false
}
