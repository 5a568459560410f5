package postgres

import (
	"context"
	"time"

	"mentorhub-backend/internal/domain"
)

type blockRepository struct {
	q DBTX
}

func (r *blockRepository) CreateBlock(ctx context.Context, block *domain.MentorBlock) error {
	query := `INSERT INTO mentor_blocks (start_date, end_date, reason, users_notified, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.q.QueryRowContext(ctx, query, block.StartDate, block.EndDate, block.Reason,
		block.UsersNotified, time.Now()).Scan(&block.ID)
}

func (r *blockRepository) GetBlockByID(ctx context.Context, id int32) (*domain.MentorBlock, error) {
	b := &domain.MentorBlock{}
	query := `SELECT id, start_date, end_date, reason, users_notified, created_on
	          FROM mentor_blocks WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.StartDate, &b.EndDate, &b.Reason,
		&b.UsersNotified, &b.CreatedOn)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (r *blockRepository) DeleteBlock(ctx context.Context, id int32) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM mentor_blocks WHERE id = $1`, id)
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

func (r *blockRepository) ListBlocks(ctx context.Context) ([]domain.MentorBlock, error) {
	query := `SELECT id, start_date, end_date, reason, users_notified, created_on
	          FROM mentor_blocks ORDER BY start_date`
	return r.queryBlocks(ctx, query)
}

func (r *blockRepository) ListBlocksOverlapping(ctx context.Context, startDate, endDate string) ([]domain.MentorBlock, error) {
	// Inclusive ranges overlap when each starts before the other ends.
	query := `SELECT id, start_date, end_date, reason, users_notified, created_on
	          FROM mentor_blocks WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date`
	return r.queryBlocks(ctx, query, startDate, endDate)
}

func (r *blockRepository) queryBlocks(ctx context.Context, query string, args ...any) ([]domain.MentorBlock, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.MentorBlock
	for rows.Next() {
		var b domain.MentorBlock
		if err := rows.Scan(&b.ID, &b.StartDate, &b.EndDate, &b.Reason, &b.UsersNotified, &b.CreatedOn); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (r *blockRepository) BlockCoversDate(ctx context.Context, localDate string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM mentor_blocks WHERE start_date <= $1 AND end_date >= $1)`
	err := r.q.QueryRowContext(ctx, query, localDate).Scan(&exists)
	return exists, err
}

func (r *blockRepository) MarkBlockNotified(ctx context.Context, id int32) error {
	_, err := r.q.ExecContext(ctx, `UPDATE mentor_blocks SET users_notified = TRUE WHERE id = $1`, id)
	return err
}
