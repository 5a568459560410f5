package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/logger"
	"mentorhub-backend/internal/repository"
)

// txMaxAttempts bounds retries of serialization/deadlock failures before
// surfacing ErrUnavailable
const txMaxAttempts = 3

// DBTX is the querying surface shared by *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store over PostgreSQL. A Store is bound
// either to the pool or, inside InTx, to one transaction.
type Store struct {
	db *sql.DB
	tx *sql.Tx
	repository.UserRepository
	repository.PlanRepository
	repository.SubscriptionRepository
	repository.PackRepository
	repository.SessionRepository
	repository.BlockRepository
	repository.CouponRepository
	repository.ConfigRepository
	repository.BillingEventRepository
}

func NewStore(db *sql.DB) *Store {
	return bindStore(db, nil)
}

func bindStore(db *sql.DB, tx *sql.Tx) *Store {
	var q DBTX = db
	if tx != nil {
		q = tx
	}
	return &Store{
		db:                     db,
		tx:                     tx,
		UserRepository:         &userRepository{q: q},
		PlanRepository:         &planRepository{q: q},
		SubscriptionRepository: &subscriptionRepository{q: q},
		PackRepository:         &packRepository{q: q},
		SessionRepository:      &sessionRepository{q: q},
		BlockRepository:        &blockRepository{q: q},
		CouponRepository:       &couponRepository{q: q},
		ConfigRepository:       &configRepository{q: q},
		BillingEventRepository: &billingEventRepository{q: q},
	}
}

// InTx runs fn in a serializable transaction, retrying serialization and
// deadlock failures a fixed number of times. A Store already bound to a
// transaction runs fn directly, so nested calls share the outer
// transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		err = fn(bindStore(s.db, tx))
		if err != nil {
			_ = tx.Rollback()
			if !isRetryable(err) {
				return err
			}
			lastErr = err
			logger.Warn("Retrying transaction after conflict", "attempt", attempt, "error", err)
			continue
		}

		if err = tx.Commit(); err != nil {
			if isRetryable(err) {
				lastErr = err
				logger.Warn("Retrying transaction after commit conflict", "attempt", attempt, "error", err)
				continue
			}
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	return fmt.Errorf("%w: transaction conflict persisted after %d attempts: %v", domain.ErrUnavailable, txMaxAttempts, lastErr)
}

// isRetryable matches PostgreSQL transaction-rollback errors
// (serialization_failure 40001, deadlock_detected 40P01)
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "40"
	}
	return false
}

// isUniqueViolation matches unique_violation (23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// notFound translates sql.ErrNoRows into the domain taxonomy
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
