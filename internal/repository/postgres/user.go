package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"

	"mentorhub-backend/internal/domain"
)

type userRepository struct {
	q DBTX
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, email, blocked, external_customer_ref, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, user.Name, user.Email, user.Blocked, user.ExternalCustomerRef, now, now).Scan(&user.ID)
}

func (r *userRepository) GetUserByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, email, blocked, external_customer_ref, created_on, updated_on FROM users WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Blocked, &u.ExternalCustomerRef, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) ListUsersByIDs(ctx context.Context, ids []int32) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, email, blocked, external_customer_ref, created_on, updated_on FROM users WHERE id = ANY($1) ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Blocked, &u.ExternalCustomerRef, &u.CreatedOn, &u.UpdatedOn); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
