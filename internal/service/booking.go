package service

import (
	"context"
	"fmt"
	"time"

	"mentorhub-backend/internal/booking"
	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

type bookingService struct {
	store    repository.Store
	cal      *calendar.Calendar
	clock    calendar.Clock
	grid     booking.Grid
	meetings MeetingProvider
	notifier Notifier
}

func NewBookingService(store repository.Store, cal *calendar.Calendar, clock calendar.Clock, grid booking.Grid, meetings MeetingProvider, notifier Notifier) BookingService {
	return &bookingService{
		store:    store,
		cal:      cal,
		clock:    clock,
		grid:     grid,
		meetings: meetings,
		notifier: notifier,
	}
}

// loadEntitlements reads the user's entitlement snapshot. Inside a
// transaction the ForUpdate variants lock the subscription and pack rows
// for the read-check-then-write sequence.
func loadEntitlements(ctx context.Context, tx repository.Store, userID int32, now time.Time, forUpdate bool) (booking.Entitlements, error) {
	var ent booking.Entitlements
	var err error

	if forUpdate {
		ent.Subscription, err = tx.FindActiveSubscriptionByUserForUpdate(ctx, userID)
	} else {
		ent.Subscription, err = tx.FindActiveSubscriptionByUser(ctx, userID)
	}
	if err != nil {
		return ent, fmt.Errorf("failed to load subscription: %w", err)
	}
	if ent.Subscription != nil {
		ent.Plan, err = tx.GetPlanByID(ctx, ent.Subscription.PlanID)
		if err != nil {
			return ent, fmt.Errorf("failed to load plan %d: %w", ent.Subscription.PlanID, err)
		}
		ent.BonusDays, err = tx.SumCreditDays(ctx, ent.Subscription.ID)
		if err != nil {
			return ent, fmt.Errorf("failed to sum credit days: %w", err)
		}
	}

	if forUpdate {
		ent.Pack, err = tx.FindActivePackByUserForUpdate(ctx, userID, now)
	} else {
		ent.Pack, err = tx.FindActivePackByUser(ctx, userID, now)
	}
	if err != nil {
		return ent, fmt.Errorf("failed to load pack: %w", err)
	}
	return ent, nil
}

func (s *bookingService) Book(ctx context.Context, userID int32, requestedAt time.Time) (*BookingResult, error) {
	now := s.clock.Now()

	var result *BookingResult
	var attendee *domain.User

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cfg, err := tx.GetMentorConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load mentor config: %w", err)
		}

		// Re-validate against freshly read, locked state; the caller's
		// pre-check may be stale.
		ent, err := loadEntitlements(ctx, tx, userID, now, true)
		if err != nil {
			return err
		}

		pending, err := tx.FindPendingSessionByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check pending session: %w", err)
		}

		requestedDate := s.cal.LocalDate(requestedAt)
		dayStart, dayEnd, err := s.cal.DayBounds(requestedDate)
		if err != nil {
			return err
		}
		bookedOnDate, err := tx.UserHasSessionBetween(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to check day bookings: %w", err)
		}
		mentorCount, err := tx.CountScheduledSessionsBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to count mentor sessions: %w", err)
		}
		blocked, err := tx.BlockCoversDate(ctx, requestedDate)
		if err != nil {
			return fmt.Errorf("failed to check mentor blocks: %w", err)
		}

		state := booking.State{
			HasPendingSession: pending != nil,
			BookedOnDate:      bookedOnDate,
			MentorBookedCount: mentorCount,
			DateBlocked:       blocked,
		}
		if err := booking.Validate(s.cal, now, ent, state, requestedAt, *cfg, s.grid); err != nil {
			return err
		}

		source, ok := booking.DetermineDebitSource(s.cal, now, ent, requestedAt)
		if !ok {
			// Combined remaining was positive but no source covers this
			// particular day (weekday-only plan, empty pack).
			return domain.Deny(domain.DenyNoSessionsRemaining)
		}

		session := &domain.Session{
			UserID:          userID,
			ScheduledAt:     requestedAt,
			DurationMinutes: int32(s.grid.SessionMinutes),
			Status:          domain.SessionStatusScheduled,
		}
		var remaining int32
		switch source.Kind {
		case domain.DebitSubscription:
			session.SubscriptionID = &source.ID
			if err := tx.AdjustSubscriptionUsage(ctx, source.ID, 1); err != nil {
				return fmt.Errorf("failed to debit subscription %d: %w", source.ID, err)
			}
			remaining = ent.Subscription.SessionsRemaining(ent.Plan) - 1
			if ent.Pack != nil && ent.Pack.Active(now) {
				remaining += ent.Pack.SessionsRemaining
			}
		case domain.DebitPack:
			session.PackID = &source.ID
			if err := tx.AdjustPackSessions(ctx, source.ID, -1, false); err != nil {
				return fmt.Errorf("failed to debit pack %d: %w", source.ID, err)
			}
			remaining = ent.Pack.SessionsRemaining - 1
			if ent.Subscription != nil && ent.Subscription.Status == domain.SubscriptionStatusActive {
				remaining += ent.Subscription.SessionsRemaining(ent.Plan)
			}
		}

		if err := tx.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		attendee, err = tx.GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}

		result = &BookingResult{Session: session, Source: source, SessionsRemaining: remaining}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Meeting provisioning is best effort: the session exists without a
	// link on failure and an operator job retries later.
	s.provisionMeeting(ctx, result.Session, attendee)

	runEffects(ctx, []effect{{
		name: "booking-confirmation",
		args: []any{"session_id", result.Session.ID, "user_id", userID},
		run: func(ctx context.Context) error {
			return s.notifier.Send(ctx, attendee.Email, attendee.Name,
				"Session booked",
				fmt.Sprintf("Your mentoring session is confirmed for %s.", result.Session.ScheduledAt.In(s.cal.Location()).Format("Mon, 02 Jan 2006 15:04")))
		},
	}})

	return result, nil
}

func (s *bookingService) provisionMeeting(ctx context.Context, session *domain.Session, attendee *domain.User) {
	end := session.ScheduledAt.Add(time.Duration(session.DurationMinutes) * time.Minute)
	runEffects(ctx, []effect{{
		name: "meeting-create",
		args: []any{"session_id", session.ID},
		run: func(ctx context.Context) error {
			eventID, joinLink, err := s.meetings.CreateMeeting(ctx,
				fmt.Sprintf("Mentoring session with %s", attendee.Name),
				"1:1 mentoring session", session.ScheduledAt, end, attendee.Email)
			if err != nil {
				return err
			}
			session.MeetingEventID = eventID
			session.MeetingJoinLink = joinLink
			return s.store.SetSessionMeeting(ctx, session.ID, eventID, joinLink)
		},
	}})
}

// GetSession returns one of the user's sessions. Sessions belonging to
// other users read as not found.
func (s *bookingService) GetSession(ctx context.Context, userID, sessionID int32) (*domain.Session, error) {
	session, err := s.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (s *bookingService) Cancel(ctx context.Context, userID, sessionID int32) (*CancelResult, error) {
	now := s.clock.Now()

	var result *CancelResult
	var meetingEventID string
	var user *domain.User

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cfg, err := tx.GetMentorConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load mentor config: %w", err)
		}

		session, err := tx.GetSessionByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.UserID != userID {
			return domain.ErrNotFound
		}
		if session.Status != domain.SessionStatusScheduled {
			return fmt.Errorf("%w: session %d is %s", domain.ErrInvalidState, sessionID, session.Status)
		}

		canCredit := s.cal.HoursUntil(now, session.ScheduledAt) >= float64(cfg.CancellationNoticeHours)

		session.Status = domain.SessionStatusCancelledByUser
		session.CancelledAt = &now
		session.LateCancel = !canCredit
		if err := tx.UpdateSession(ctx, session); err != nil {
			return fmt.Errorf("failed to update session %d: %w", sessionID, err)
		}

		if canCredit {
			if source, ok := session.Source(); ok {
				switch source.Kind {
				case domain.DebitSubscription:
					if err := tx.AdjustSubscriptionUsage(ctx, source.ID, -1); err != nil {
						return fmt.Errorf("failed to credit subscription %d: %w", source.ID, err)
					}
				case domain.DebitPack:
					if err := tx.AdjustPackSessions(ctx, source.ID, 1, false); err != nil {
						return fmt.Errorf("failed to credit pack %d: %w", source.ID, err)
					}
				}
			}
		}

		user, err = tx.GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}

		meetingEventID = session.MeetingEventID
		result = &CancelResult{LateCancel: !canCredit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	effects := []effect{}
	if meetingEventID != "" {
		effects = append(effects, effect{
			name: "meeting-delete",
			args: []any{"session_id", sessionID, "event_id", meetingEventID},
			run: func(ctx context.Context) error {
				return s.meetings.DeleteMeeting(ctx, meetingEventID)
			},
		})
	}
	effects = append(effects, effect{
		name: "cancellation-notice",
		args: []any{"session_id", sessionID, "user_id", userID},
		run: func(ctx context.Context) error {
			body := "Your session was cancelled and the session was credited back."
			if result.LateCancel {
				body = "Your session was cancelled. The cancellation was inside the notice window, so no credit was returned."
			}
			return s.notifier.Send(ctx, user.Email, user.Name, "Session cancelled", body)
		},
	})
	runEffects(ctx, effects)

	return result, nil
}
