package postgres

import (
	"context"
	"fmt"
	"time"

	"mentorhub-backend/internal/domain"
)

type billingEventRepository struct {
	q DBTX
}

func (r *billingEventRepository) MarkBillingEventProcessed(ctx context.Context, eventID string) error {
	// The unique constraint is the dedup mechanism for at-least-once
	// webhook delivery. ON CONFLICT keeps a duplicate from aborting the
	// surrounding serializable transaction; the caller treats the
	// conflict as a no-op and the transaction still commits.
	query := `INSERT INTO processed_billing_events (event_id, processed_on)
	          VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING`
	res, err := r.q.ExecContext(ctx, query, eventID, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: billing event %s already processed", domain.ErrConflict, eventID)
	}
	return nil
}
