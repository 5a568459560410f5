package service

import (
	"context"
	"fmt"
	"sort"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

type blockService struct {
	store    repository.Store
	cal      *calendar.Calendar
	clock    calendar.Clock
	meetings MeetingProvider
	notifier Notifier
}

func NewBlockService(store repository.Store, cal *calendar.Calendar, clock calendar.Clock, meetings MeetingProvider, notifier Notifier) BlockService {
	return &blockService{store: store, cal: cal, clock: clock, meetings: meetings, notifier: notifier}
}

// CreateBlock declares a mentor-unavailable date range and runs the full
// cascade in one transaction: credit every active subscription with one
// bonus day per blocked day, cancel overlapping scheduled sessions and
// restore their debits. Meeting deletion and notifications run after
// commit, each independently.
func (s *blockService) CreateBlock(ctx context.Context, startDate, endDate, reason string) (*BlockResult, error) {
	now := s.clock.Now()

	blockDays, err := s.cal.DaysInclusive(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	}

	var result *BlockResult
	var creditedUsers []domain.User

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		overlapping, err := tx.ListBlocksOverlapping(ctx, startDate, endDate)
		if err != nil {
			return fmt.Errorf("failed to check block overlap: %w", err)
		}
		if len(overlapping) > 0 {
			return fmt.Errorf("%w: block overlaps %s..%s", domain.ErrConflict,
				overlapping[0].StartDate, overlapping[0].EndDate)
		}

		block := &domain.MentorBlock{StartDate: startDate, EndDate: endDate, Reason: reason}
		if err := tx.CreateBlock(ctx, block); err != nil {
			return fmt.Errorf("failed to create block: %w", err)
		}

		// One bonus-day credit per blocked day for every active
		// subscription, affected or not.
		subs, err := tx.ListActiveSubscriptions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list active subscriptions: %w", err)
		}
		userIDs := make([]int32, 0, len(subs))
		for i := range subs {
			credit := &domain.SubscriptionCredit{
				SubscriptionID: subs[i].ID,
				BlockID:        &block.ID,
				Days:           int32(blockDays),
				Reason:         reason,
			}
			if err := tx.CreateCredit(ctx, credit); err != nil {
				return fmt.Errorf("failed to credit subscription %d: %w", subs[i].ID, err)
			}
			userIDs = append(userIDs, subs[i].UserID)
		}

		// Sessions lock first, then subscriptions/packs, both in primary
		// key order.
		from, _, err := s.cal.DayBounds(startDate)
		if err != nil {
			return err
		}
		_, to, err := s.cal.DayBounds(endDate)
		if err != nil {
			return err
		}
		sessions, err := tx.ListScheduledSessionsBetweenForUpdate(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to list overlapping sessions: %w", err)
		}

		subCredits := make(map[int32]int32)
		packCredits := make(map[int32]int32)
		cancelled := make([]domain.Session, 0, len(sessions))
		for i := range sessions {
			sess := &sessions[i]
			sess.Status = domain.SessionStatusCancelledByMentor
			sess.CancelledAt = &now
			if err := tx.UpdateSession(ctx, sess); err != nil {
				return fmt.Errorf("failed to cancel session %d: %w", sess.ID, err)
			}
			if source, ok := sess.Source(); ok {
				switch source.Kind {
				case domain.DebitSubscription:
					subCredits[source.ID]++
				case domain.DebitPack:
					packCredits[source.ID]++
				}
			}
			cancelled = append(cancelled, *sess)
		}

		// Aggregated restores, applied one entity at a time in stable
		// order. Expired packs are still credited; see DESIGN.md.
		for _, id := range sortedKeys(subCredits) {
			if err := tx.AdjustSubscriptionUsage(ctx, id, -subCredits[id]); err != nil {
				return fmt.Errorf("failed to restore subscription %d: %w", id, err)
			}
		}
		for _, id := range sortedKeys(packCredits) {
			if err := tx.AdjustPackSessions(ctx, id, packCredits[id], false); err != nil {
				return fmt.Errorf("failed to restore pack %d: %w", id, err)
			}
		}

		creditedUsers, err = tx.ListUsersByIDs(ctx, userIDs)
		if err != nil {
			return fmt.Errorf("failed to load credited users: %w", err)
		}

		result = &BlockResult{
			Block:                 block,
			CreditedSubscriptions: len(subs),
			CancelledSessions:     cancelled,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.runPostBlockEffects(ctx, result, creditedUsers, blockDays)
	return result, nil
}

func (s *blockService) runPostBlockEffects(ctx context.Context, result *BlockResult, creditedUsers []domain.User, blockDays int) {
	var effects []effect

	for _, sess := range result.CancelledSessions {
		if sess.MeetingEventID == "" {
			continue
		}
		eventID := sess.MeetingEventID
		sessionID := sess.ID
		effects = append(effects, effect{
			name: "meeting-delete",
			args: []any{"session_id", sessionID, "event_id", eventID},
			run: func(ctx context.Context) error {
				return s.meetings.DeleteMeeting(ctx, eventID)
			},
		})
	}

	for i := range creditedUsers {
		u := creditedUsers[i]
		effects = append(effects, effect{
			name: "block-credit-notice",
			args: []any{"block_id", result.Block.ID, "user_id", u.ID},
			run: func(ctx context.Context) error {
				return s.notifier.Send(ctx, u.Email, u.Name, "Mentor unavailable",
					fmt.Sprintf("The mentor is unavailable %s to %s. %d bonus days were added to your subscription.",
						result.Block.StartDate, result.Block.EndDate, blockDays))
			},
		})
	}

	effects = append(effects, effect{
		name: "block-mark-notified",
		args: []any{"block_id", result.Block.ID},
		run: func(ctx context.Context) error {
			return s.store.MarkBlockNotified(ctx, result.Block.ID)
		},
	})

	runEffects(ctx, effects)
}

// DeleteBlock revokes the block's credits and removes it. Sessions the
// block already cancelled stay cancelled.
func (s *blockService) DeleteBlock(ctx context.Context, blockID int32) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetBlockByID(ctx, blockID); err != nil {
			return err
		}
		if _, err := tx.DeleteCreditsByBlock(ctx, blockID); err != nil {
			return fmt.Errorf("failed to delete credits for block %d: %w", blockID, err)
		}
		return tx.DeleteBlock(ctx, blockID)
	})
}

func (s *blockService) ListBlocks(ctx context.Context) ([]domain.MentorBlock, error) {
	return s.store.ListBlocks(ctx)
}

func sortedKeys(m map[int32]int32) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
