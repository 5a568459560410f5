package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
)

var testGrid = Grid{FirstHour: 10, LastHour: 18, SessionMinutes: 60}

func testConfig() domain.MentorConfig {
	return domain.MentorConfig{
		MaxSessionsPerDay:       4,
		BookingWindowDays:       14,
		CancellationNoticeHours: 24,
	}
}

func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New("Europe/Madrid")
	if err != nil {
		t.Fatalf("failed to load calendar: %v", err)
	}
	return cal
}

// testNow is Wednesday 2026-03-11 09:00 local
func testNow(t *testing.T, cal *calendar.Calendar) time.Time {
	t.Helper()
	now, err := cal.SlotInstant("2026-03-11", 9)
	if err != nil {
		t.Fatal(err)
	}
	return now
}

func slot(t *testing.T, cal *calendar.Calendar, date string, hour int) time.Time {
	t.Helper()
	at, err := cal.SlotInstant(date, hour)
	if err != nil {
		t.Fatal(err)
	}
	return at
}

func activeSubscription(now time.Time, used int32) (*domain.Subscription, *domain.Plan) {
	sub := &domain.Subscription{
		ID:                     1,
		UserID:                 7,
		PlanID:                 2,
		Status:                 domain.SubscriptionStatusActive,
		CurrentPeriodStart:     now.AddDate(0, 0, -10),
		CurrentPeriodEnd:       now.AddDate(0, 0, 20),
		SessionsUsedThisPeriod: used,
	}
	plan := &domain.Plan{ID: 2, SessionsPerPeriod: 8, Period: domain.PlanPeriodMonthly}
	return sub, plan
}

func activePack(now time.Time, remaining int32) *domain.Pack {
	return &domain.Pack{
		ID:                3,
		UserID:            7,
		SessionsTotal:     10,
		SessionsRemaining: remaining,
		ExpiresAt:         now.AddDate(0, 0, 15),
	}
}

func assertDenied(t *testing.T, err error, want domain.DenyReason) {
	t.Helper()
	reason, ok := domain.DeniedReason(err)
	if assert.True(t, ok, "expected a denial, got %v", err) {
		assert.Equal(t, want, reason)
	}
}

func TestValidate_Allows(t *testing.T) {
	cal := testCalendar(t)
	now := testNow(t, cal)
	sub, plan := activeSubscription(now, 2)
	ent := Entitlements{Subscription: sub, Plan: plan}

	err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-12", 11), testConfig(), testGrid)
	assert.NoError(t, err)
}

func TestValidate_DenialOrder(t *testing.T) {
	cal := testCalendar(t)
	now := testNow(t, cal)
	requested := slot(t, cal, "2026-03-12", 11)

	t.Run("NoSessionSource", func(t *testing.T) {
		err := Validate(cal, now, Entitlements{}, State{}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyNoSessionSource)
	})

	t.Run("CancelledSubscriptionIsNoSource", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		sub.Status = domain.SubscriptionStatusCancelled
		err := Validate(cal, now, Entitlements{Subscription: sub, Plan: plan}, State{}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyNoSessionSource)
	})

	t.Run("SubscriptionPastPeriodEndPlusBonusDays", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		sub.CurrentPeriodEnd = now.AddDate(0, 0, -3)
		ent := Entitlements{Subscription: sub, Plan: plan, BonusDays: 2}
		err := Validate(cal, now, ent, State{}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyNoSessionSource)
	})

	t.Run("BonusDaysExtendUsability", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		sub.CurrentPeriodEnd = now.AddDate(0, 0, -3)
		ent := Entitlements{Subscription: sub, Plan: plan, BonusDays: 5}
		err := Validate(cal, now, ent, State{}, requested, testConfig(), testGrid)
		assert.NoError(t, err)
	})

	t.Run("NoSessionsRemaining", func(t *testing.T) {
		sub, plan := activeSubscription(now, 8)
		err := Validate(cal, now, Entitlements{Subscription: sub, Plan: plan}, State{}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyNoSessionsRemaining)
	})

	t.Run("CombinedRemainingSpansBothSources", func(t *testing.T) {
		sub, plan := activeSubscription(now, 8)
		ent := Entitlements{Subscription: sub, Plan: plan, Pack: activePack(now, 1)}
		err := Validate(cal, now, ent, State{}, requested, testConfig(), testGrid)
		assert.NoError(t, err)
	})

	t.Run("HasPendingSession", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{HasPendingSession: true}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyHasPendingSession)
	})

	t.Run("SlotInPast", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-11", 8), testConfig(), testGrid)
		assertDenied(t, err, domain.DenySlotInPast)
	})

	t.Run("MisalignedSlot", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, requested.Add(30*time.Minute), testConfig(), testGrid)
		assertDenied(t, err, domain.DenyInvalidTimeSlot)
	})

	t.Run("HourOutsideGrid", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-12", 19), testConfig(), testGrid)
		assertDenied(t, err, domain.DenyInvalidTimeSlot)
	})

	t.Run("SameDayIsOutsideWindow", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-11", 15), testConfig(), testGrid)
		assertDenied(t, err, domain.DenyOutsideBookingWindow)
	})

	t.Run("BeyondWindowEnd", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-26", 11), testConfig(), testGrid)
		assertDenied(t, err, domain.DenyOutsideBookingWindow)
	})

	t.Run("LastWindowDayAllowed", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-25", 11), testConfig(), testGrid)
		assert.NoError(t, err)
	})

	t.Run("WeekendWithoutAccess", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-14", 11), testConfig(), testGrid)
		assertDenied(t, err, domain.DenyWeekendNotAllowed)
	})

	t.Run("WeekendWithPlanAccess", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		plan.WeekendAccess = true
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-14", 11), testConfig(), testGrid)
		assert.NoError(t, err)
	})

	t.Run("WeekendWithActivePack", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan, Pack: activePack(now, 4)}
		err := Validate(cal, now, ent, State{}, slot(t, cal, "2026-03-14", 11), testConfig(), testGrid)
		assert.NoError(t, err)
	})

	t.Run("MentorBlocked", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{DateBlocked: true}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyMentorBlocked)
	})

	t.Run("AlreadyBookedToday", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{BookedOnDate: true}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyAlreadyBookedToday)
	})

	t.Run("MentorAtCapacity", func(t *testing.T) {
		sub, plan := activeSubscription(now, 0)
		ent := Entitlements{Subscription: sub, Plan: plan}
		err := Validate(cal, now, ent, State{MentorBookedCount: 4}, requested, testConfig(), testGrid)
		assertDenied(t, err, domain.DenyMentorAtCapacity)
	})
}

func TestDetermineDebitSource(t *testing.T) {
	cal := testCalendar(t)
	now := testNow(t, cal)
	weekday := slot(t, cal, "2026-03-12", 11)
	weekend := slot(t, cal, "2026-03-14", 11)

	t.Run("SubscriptionPreferredOnWeekday", func(t *testing.T) {
		sub, plan := activeSubscription(now, 2)
		ent := Entitlements{Subscription: sub, Plan: plan, Pack: activePack(now, 5)}
		source, ok := DetermineDebitSource(cal, now, ent, weekday)
		assert.True(t, ok)
		assert.Equal(t, domain.DebitSource{Kind: domain.DebitSubscription, ID: sub.ID}, source)
	})

	t.Run("WeekdayOnlyPlanDebitsPackOnWeekend", func(t *testing.T) {
		sub, plan := activeSubscription(now, 2)
		pack := activePack(now, 5)
		ent := Entitlements{Subscription: sub, Plan: plan, Pack: pack}
		source, ok := DetermineDebitSource(cal, now, ent, weekend)
		assert.True(t, ok)
		assert.Equal(t, domain.DebitSource{Kind: domain.DebitPack, ID: pack.ID}, source)
	})

	t.Run("WeekendAccessPlanDebitsSubscriptionOnWeekend", func(t *testing.T) {
		sub, plan := activeSubscription(now, 2)
		plan.WeekendAccess = true
		ent := Entitlements{Subscription: sub, Plan: plan, Pack: activePack(now, 5)}
		source, ok := DetermineDebitSource(cal, now, ent, weekend)
		assert.True(t, ok)
		assert.Equal(t, domain.DebitSubscription, source.Kind)
	})

	t.Run("ExhaustedSubscriptionFallsBackToPack", func(t *testing.T) {
		sub, plan := activeSubscription(now, 8)
		pack := activePack(now, 5)
		ent := Entitlements{Subscription: sub, Plan: plan, Pack: pack}
		source, ok := DetermineDebitSource(cal, now, ent, weekday)
		assert.True(t, ok)
		assert.Equal(t, domain.DebitPack, source.Kind)
	})

	t.Run("NoEligibleSourceOnWeekend", func(t *testing.T) {
		// Weekday-only subscription with capacity, pack empty: combined
		// remaining is positive but nothing covers a weekend slot.
		sub, plan := activeSubscription(now, 2)
		ent := Entitlements{Subscription: sub, Plan: plan, Pack: activePack(now, 0)}
		_, ok := DetermineDebitSource(cal, now, ent, weekend)
		assert.False(t, ok)
	})
}
