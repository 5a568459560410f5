package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mentorhub-backend/internal/domain"
)

type packRepository struct {
	q DBTX
}

const packColumns = `id, user_id, sessions_total, sessions_remaining, expires_at, created_on, updated_on`

func scanPack(row *sql.Row) (*domain.Pack, error) {
	p := &domain.Pack{}
	err := row.Scan(&p.ID, &p.UserID, &p.SessionsTotal, &p.SessionsRemaining, &p.ExpiresAt, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *packRepository) CreatePack(ctx context.Context, pack *domain.Pack) error {
	query := `INSERT INTO packs (user_id, sessions_total, sessions_remaining, expires_at, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, pack.UserID, pack.SessionsTotal, pack.SessionsRemaining,
		pack.ExpiresAt, now, now).Scan(&pack.ID)
}

func (r *packRepository) FindActivePackByUser(ctx context.Context, userID int32, now time.Time) (*domain.Pack, error) {
	query := `SELECT ` + packColumns + ` FROM packs WHERE user_id = $1 AND expires_at > $2
	          ORDER BY expires_at DESC LIMIT 1`
	pack, err := scanPack(r.q.QueryRowContext(ctx, query, userID, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return pack, err
}

func (r *packRepository) FindActivePackByUserForUpdate(ctx context.Context, userID int32, now time.Time) (*domain.Pack, error) {
	query := `SELECT ` + packColumns + ` FROM packs WHERE user_id = $1 AND expires_at > $2
	          ORDER BY expires_at DESC LIMIT 1 FOR UPDATE`
	pack, err := scanPack(r.q.QueryRowContext(ctx, query, userID, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return pack, err
}

func (r *packRepository) AdjustPackSessions(ctx context.Context, packID int32, delta int32, topUp bool) error {
	// Floor at zero on debits; top-ups grow the total alongside the
	// remaining count.
	query := `UPDATE packs
	          SET sessions_remaining = GREATEST(0, sessions_remaining + $1),
	              sessions_total = sessions_total + CASE WHEN $2 THEN GREATEST($1, 0) ELSE 0 END,
	              updated_on = $3
	          WHERE id = $4`
	res, err := r.q.ExecContext(ctx, query, delta, topUp, time.Now(), packID)
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

func (r *packRepository) UpdatePackExpiry(ctx context.Context, packID int32, expiresAt time.Time) error {
	query := `UPDATE packs SET expires_at = $1, updated_on = $2 WHERE id = $3`
	_, err := r.q.ExecContext(ctx, query, expiresAt, time.Now(), packID)
	return err
}

func (r *packRepository) ListPacksExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Pack, error) {
	query := `SELECT ` + packColumns + ` FROM packs
	          WHERE expires_at > $1 AND expires_at <= $2 AND sessions_remaining > 0 ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []domain.Pack
	for rows.Next() {
		var p domain.Pack
		if err := rows.Scan(&p.ID, &p.UserID, &p.SessionsTotal, &p.SessionsRemaining, &p.ExpiresAt, &p.CreatedOn, &p.UpdatedOn); err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}
