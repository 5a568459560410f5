package postgres

import (
	"context"

	"mentorhub-backend/internal/domain"
)

type configRepository struct {
	q DBTX
}

func (r *configRepository) GetMentorConfig(ctx context.Context) (*domain.MentorConfig, error) {
	cfg := &domain.MentorConfig{}
	query := `SELECT max_sessions_per_day, booking_window_days, cancellation_notice_hours
	          FROM mentor_config WHERE id = 1`
	err := r.q.QueryRowContext(ctx, query).Scan(&cfg.MaxSessionsPerDay, &cfg.BookingWindowDays,
		&cfg.CancellationNoticeHours)
	if err != nil {
		return nil, notFound(err)
	}
	return cfg, nil
}

func (r *configRepository) UpdateMentorConfig(ctx context.Context, cfg *domain.MentorConfig) error {
	query := `UPDATE mentor_config SET max_sessions_per_day=$1, booking_window_days=$2,
	          cancellation_notice_hours=$3 WHERE id = 1`
	_, err := r.q.ExecContext(ctx, query, cfg.MaxSessionsPerDay, cfg.BookingWindowDays,
		cfg.CancellationNoticeHours)
	return err
}
