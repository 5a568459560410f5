package service

import (
	"context"
	"fmt"

	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/repository"
)

type settingsService struct {
	store repository.Store
}

func NewSettingsService(store repository.Store) SettingsService {
	return &settingsService{store: store}
}

func (s *settingsService) GetSettings(ctx context.Context) (*domain.MentorConfig, error) {
	return s.store.GetMentorConfig(ctx)
}

// UpdateSettings replaces the mentor-wide booking rules. Changes apply
// to future bookings only; existing sessions keep the terms they were
// booked under.
func (s *settingsService) UpdateSettings(ctx context.Context, cfg *domain.MentorConfig) error {
	if cfg.MaxSessionsPerDay <= 0 {
		return fmt.Errorf("%w: max sessions per day must be positive", domain.ErrInvalidState)
	}
	if cfg.BookingWindowDays <= 0 {
		return fmt.Errorf("%w: booking window must be positive", domain.ErrInvalidState)
	}
	if cfg.CancellationNoticeHours < 0 {
		return fmt.Errorf("%w: cancellation notice cannot be negative", domain.ErrInvalidState)
	}
	return s.store.UpdateMentorConfig(ctx, cfg)
}
