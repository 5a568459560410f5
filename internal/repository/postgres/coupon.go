package postgres

import (
	"context"
	"fmt"
	"time"

	"mentorhub-backend/internal/domain"
)

type couponRepository struct {
	q DBTX
}

func (r *couponRepository) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	query := `INSERT INTO coupons (code, sessions, max_redemptions, redeemed, expires_at, created_on)
	          VALUES ($1, $2, $3, 0, $4, $5) RETURNING id`
	err := r.q.QueryRowContext(ctx, query, coupon.Code, coupon.Sessions, coupon.MaxRedemptions,
		coupon.ExpiresAt, time.Now()).Scan(&coupon.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: coupon code %s already exists", domain.ErrConflict, coupon.Code)
	}
	return err
}

func (r *couponRepository) GetCouponByCodeForUpdate(ctx context.Context, code string) (*domain.Coupon, error) {
	c := &domain.Coupon{}
	query := `SELECT id, code, sessions, max_redemptions, redeemed, expires_at, created_on
	          FROM coupons WHERE code = $1 FOR UPDATE`
	err := r.q.QueryRowContext(ctx, query, code).Scan(&c.ID, &c.Code, &c.Sessions,
		&c.MaxRedemptions, &c.Redeemed, &c.ExpiresAt, &c.CreatedOn)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *couponRepository) IncrementCouponRedemptions(ctx context.Context, couponID int32) error {
	_, err := r.q.ExecContext(ctx, `UPDATE coupons SET redeemed = redeemed + 1 WHERE id = $1`, couponID)
	return err
}

func (r *couponRepository) RecordCouponRedemption(ctx context.Context, couponID, userID int32) error {
	query := `INSERT INTO coupon_redemptions (coupon_id, user_id, redeemed_on) VALUES ($1, $2, $3)`
	_, err := r.q.ExecContext(ctx, query, couponID, userID, time.Now())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: coupon already redeemed by user %d", domain.ErrConflict, userID)
	}
	return err
}
