package service

import (
	"context"
	"fmt"

	"mentorhub-backend/internal/booking"
	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

type availabilityService struct {
	store repository.Store
	cal   *calendar.Calendar
	clock calendar.Clock
	grid  booking.Grid
}

func NewAvailabilityService(store repository.Store, cal *calendar.Calendar, clock calendar.Clock, grid booking.Grid) AvailabilityService {
	return &availabilityService{store: store, cal: cal, clock: clock, grid: grid}
}

// GetSchedule projects the public availability grid for the booking
// window. Read-only, computed from one snapshot on every request.
func (s *availabilityService) GetSchedule(ctx context.Context, userID int32) ([]booking.DaySchedule, error) {
	now := s.clock.Now()

	cfg, err := s.store.GetMentorConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentor config: %w", err)
	}

	today := s.cal.LocalDate(now)
	windowEnd, err := s.cal.AddDays(today, int(cfg.BookingWindowDays))
	if err != nil {
		return nil, err
	}
	from, _, err := s.cal.DayBounds(today)
	if err != nil {
		return nil, err
	}
	_, to, err := s.cal.DayBounds(windowEnd)
	if err != nil {
		return nil, err
	}

	blocks, err := s.store.ListBlocksOverlapping(ctx, today, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentor blocks: %w", err)
	}

	scheduled, err := s.store.ListScheduledSessionsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled sessions: %w", err)
	}
	taken := make(map[int64]bool, len(scheduled))
	counts := make(map[string]int32)
	for _, sess := range scheduled {
		taken[sess.ScheduledAt.Unix()] = true
		counts[s.cal.LocalDate(sess.ScheduledAt)]++
	}

	userSessions, err := s.store.ListUserSessionsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list user sessions: %w", err)
	}
	userDates := make(map[string]bool)
	for _, sess := range userSessions {
		if sess.Status == domain.SessionStatusScheduled || sess.Status == domain.SessionStatusCompleted {
			userDates[s.cal.LocalDate(sess.ScheduledAt)] = true
		}
	}

	ent, err := loadEntitlements(ctx, s.store, userID, now, false)
	if err != nil {
		return nil, err
	}
	weekendOK := (ent.Subscription != nil && ent.Plan != nil && ent.Plan.WeekendAccess) ||
		(ent.Pack != nil && ent.Pack.Active(now))

	state := booking.ScheduleState{
		Blocks:        blocks,
		TakenSlots:    taken,
		MentorCounts:  counts,
		UserDates:     userDates,
		UserWeekendOK: weekendOK,
	}
	return booking.BuildSchedule(s.cal, now, *cfg, s.grid, state)
}
