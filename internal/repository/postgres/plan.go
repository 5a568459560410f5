package postgres

import (
	"context"
	"database/sql"
	"errors"

	"mentorhub-backend/internal/domain"
)

type planRepository struct {
	q DBTX
}

const planColumns = `id, name, sessions_per_period, period, weekend_access, price_cents, COALESCE(external_price_ref, '')`

func (r *planRepository) CreatePlan(ctx context.Context, plan *domain.Plan) error {
	query := `INSERT INTO plans (name, sessions_per_period, period, weekend_access, price_cents, external_price_ref)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.q.QueryRowContext(ctx, query, plan.Name, plan.SessionsPerPeriod, plan.Period,
		plan.WeekendAccess, plan.PriceCents, plan.ExternalPriceRef).Scan(&plan.ID)
}

func (r *planRepository) GetPlanByID(ctx context.Context, id int32) (*domain.Plan, error) {
	p := &domain.Plan{}
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.SessionsPerPeriod,
		&p.Period, &p.WeekendAccess, &p.PriceCents, &p.ExternalPriceRef)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *planRepository) FindPlanByExternalRef(ctx context.Context, ref string) (*domain.Plan, error) {
	p := &domain.Plan{}
	query := `SELECT ` + planColumns + ` FROM plans WHERE external_price_ref = $1`
	err := r.q.QueryRowContext(ctx, query, ref).Scan(&p.ID, &p.Name, &p.SessionsPerPeriod,
		&p.Period, &p.WeekendAccess, &p.PriceCents, &p.ExternalPriceRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *planRepository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.SessionsPerPeriod, &p.Period, &p.WeekendAccess,
			&p.PriceCents, &p.ExternalPriceRef); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
