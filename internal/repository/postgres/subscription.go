package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mentorhub-backend/internal/domain"
)

type subscriptionRepository struct {
	q DBTX
}

const subscriptionColumns = `id, user_id, plan_id, status, current_period_start, current_period_end,
	sessions_used_this_period, carry_over_sessions, pending_plan_change_id, cancelled_at,
	external_sub_ref, latest_payment_ref, created_on, updated_on`

func (r *subscriptionRepository) scanSubscription(row *sql.Row) (*domain.Subscription, error) {
	sub := &domain.Subscription{}
	err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd, &sub.SessionsUsedThisPeriod, &sub.CarryOverSessions,
		&sub.PendingPlanChangeID, &sub.CancelledAt, &sub.ExternalSubRef, &sub.LatestPaymentRef,
		&sub.CreatedOn, &sub.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `INSERT INTO subscriptions (user_id, plan_id, status, current_period_start, current_period_end,
	          sessions_used_this_period, carry_over_sessions, external_sub_ref, latest_payment_ref, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, sub.UserID, sub.PlanID, sub.Status, sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd, sub.SessionsUsedThisPeriod, sub.CarryOverSessions,
		sub.ExternalSubRef, sub.LatestPaymentRef, now, now).Scan(&sub.ID)
}

func (r *subscriptionRepository) FindActiveSubscriptionByUser(ctx context.Context, userID int32) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 AND status = $2`
	sub, err := r.scanSubscription(r.q.QueryRowContext(ctx, query, userID, domain.SubscriptionStatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (r *subscriptionRepository) FindActiveSubscriptionByUserForUpdate(ctx context.Context, userID int32) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 AND status = $2 FOR UPDATE`
	sub, err := r.scanSubscription(r.q.QueryRowContext(ctx, query, userID, domain.SubscriptionStatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (r *subscriptionRepository) FindSubscriptionByExternalRefForUpdate(ctx context.Context, ref string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE external_sub_ref = $1
	          ORDER BY created_on DESC LIMIT 1 FOR UPDATE`
	sub, err := r.scanSubscription(r.q.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `UPDATE subscriptions SET plan_id=$1, status=$2, current_period_start=$3, current_period_end=$4,
	          sessions_used_this_period=$5, carry_over_sessions=$6, pending_plan_change_id=$7,
	          cancelled_at=$8, latest_payment_ref=$9, updated_on=$10 WHERE id=$11`
	_, err := r.q.ExecContext(ctx, query, sub.PlanID, sub.Status, sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd, sub.SessionsUsedThisPeriod, sub.CarryOverSessions,
		sub.PendingPlanChangeID, sub.CancelledAt, sub.LatestPaymentRef, time.Now(), sub.ID)
	return err
}

func (r *subscriptionRepository) ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE status = $1 ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, domain.SubscriptionStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.CurrentPeriodStart,
			&sub.CurrentPeriodEnd, &sub.SessionsUsedThisPeriod, &sub.CarryOverSessions,
			&sub.PendingPlanChangeID, &sub.CancelledAt, &sub.ExternalSubRef, &sub.LatestPaymentRef,
			&sub.CreatedOn, &sub.UpdatedOn); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *subscriptionRepository) AdjustSubscriptionUsage(ctx context.Context, subscriptionID int32, delta int32) error {
	// Floor at zero: concurrent block cancellations may already have
	// credited the same session.
	query := `UPDATE subscriptions
	          SET sessions_used_this_period = GREATEST(0, sessions_used_this_period + $1), updated_on = $2
	          WHERE id = $3`
	res, err := r.q.ExecContext(ctx, query, delta, time.Now(), subscriptionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) DeleteStalePendingSubscriptions(ctx context.Context, userID int32) error {
	query := `DELETE FROM subscriptions WHERE user_id = $1 AND status = $2`
	_, err := r.q.ExecContext(ctx, query, userID, domain.SubscriptionStatusPending)
	return err
}

func (r *subscriptionRepository) PurgePendingSubscriptionsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM subscriptions WHERE status = $1 AND created_on < $2`
	res, err := r.q.ExecContext(ctx, query, domain.SubscriptionStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *subscriptionRepository) CreateCredit(ctx context.Context, credit *domain.SubscriptionCredit) error {
	query := `INSERT INTO subscription_credits (subscription_id, block_id, days, reason, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.q.QueryRowContext(ctx, query, credit.SubscriptionID, credit.BlockID, credit.Days,
		credit.Reason, time.Now()).Scan(&credit.ID)
}

func (r *subscriptionRepository) SumCreditDays(ctx context.Context, subscriptionID int32) (int32, error) {
	var days int32
	query := `SELECT COALESCE(SUM(days), 0) FROM subscription_credits WHERE subscription_id = $1`
	err := r.q.QueryRowContext(ctx, query, subscriptionID).Scan(&days)
	return days, err
}

func (r *subscriptionRepository) ListCreditsBySubscription(ctx context.Context, subscriptionID int32) ([]domain.SubscriptionCredit, error) {
	query := `SELECT id, subscription_id, block_id, days, reason, created_on
	          FROM subscription_credits WHERE subscription_id = $1 ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []domain.SubscriptionCredit
	for rows.Next() {
		var c domain.SubscriptionCredit
		if err := rows.Scan(&c.ID, &c.SubscriptionID, &c.BlockID, &c.Days, &c.Reason, &c.CreatedOn); err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

func (r *subscriptionRepository) DeleteCreditsBySubscription(ctx context.Context, subscriptionID int32) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM subscription_credits WHERE subscription_id = $1`, subscriptionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *subscriptionRepository) DeleteCreditsByBlock(ctx context.Context, blockID int32) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM subscription_credits WHERE block_id = $1`, blockID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
