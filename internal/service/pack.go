package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mentorhub-backend/internal/calendar"
	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

type packService struct {
	store repository.Store
	cal   *calendar.Calendar
	clock calendar.Clock
}

func NewPackService(store repository.Store, cal *calendar.Calendar, clock calendar.Clock) PackService {
	return &packService{store: store, cal: cal, clock: clock}
}

func (s *packService) CreateCoupon(ctx context.Context, sessions, maxRedemptions int32, expiresAt *time.Time) (*domain.Coupon, error) {
	if sessions <= 0 {
		return nil, fmt.Errorf("%w: coupon must grant at least one session", domain.ErrInvalidState)
	}
	coupon := &domain.Coupon{
		Code:           strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10]),
		Sessions:       sessions,
		MaxRedemptions: maxRedemptions,
		ExpiresAt:      expiresAt,
	}
	if err := s.store.CreateCoupon(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// RedeemCoupon grants the coupon's sessions as a prepaid pack. A user
// keeps at most one active pack: redemption tops it up and pushes the
// expiry to the first of the next month, never creating a second pack.
func (s *packService) RedeemCoupon(ctx context.Context, userID int32, code string) (*domain.Pack, error) {
	now := s.clock.Now()
	expiresAt := s.cal.NextMonthStart(now)

	var pack *domain.Pack
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		coupon, err := tx.GetCouponByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(now) {
			return fmt.Errorf("%w: coupon %s expired", domain.ErrInvalidState, code)
		}
		if coupon.MaxRedemptions > 0 && coupon.Redeemed >= coupon.MaxRedemptions {
			return fmt.Errorf("%w: coupon %s exhausted", domain.ErrConflict, code)
		}
		if err := tx.RecordCouponRedemption(ctx, coupon.ID, userID); err != nil {
			return err
		}
		if err := tx.IncrementCouponRedemptions(ctx, coupon.ID); err != nil {
			return fmt.Errorf("failed to count redemption: %w", err)
		}

		pack, err = tx.FindActivePackByUserForUpdate(ctx, userID, now)
		if err != nil {
			return fmt.Errorf("failed to load pack: %w", err)
		}
		if pack == nil {
			pack = &domain.Pack{
				UserID:            userID,
				SessionsTotal:     coupon.Sessions,
				SessionsRemaining: coupon.Sessions,
				ExpiresAt:         expiresAt,
			}
			return tx.CreatePack(ctx, pack)
		}

		if err := tx.AdjustPackSessions(ctx, pack.ID, coupon.Sessions, true); err != nil {
			return fmt.Errorf("failed to top up pack %d: %w", pack.ID, err)
		}
		if err := tx.UpdatePackExpiry(ctx, pack.ID, expiresAt); err != nil {
			return fmt.Errorf("failed to extend pack %d: %w", pack.ID, err)
		}
		pack.SessionsTotal += coupon.Sessions
		pack.SessionsRemaining += coupon.Sessions
		pack.ExpiresAt = expiresAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pack, nil
}
