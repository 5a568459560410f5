package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mentorhub-backend/internal/domain"
)

type sessionRepository struct {
	q DBTX
}

const sessionColumns = `id, user_id, subscription_id, pack_id, scheduled_at, duration_minutes,
	status, cancelled_at, late_cancel, COALESCE(meeting_event_id, ''), COALESCE(meeting_join_link, ''),
	created_on, updated_on`

func scanSessionRow(row *sql.Row) (*domain.Session, error) {
	s := &domain.Session{}
	err := row.Scan(&s.ID, &s.UserID, &s.SubscriptionID, &s.PackID, &s.ScheduledAt, &s.DurationMinutes,
		&s.Status, &s.CancelledAt, &s.LateCancel, &s.MeetingEventID, &s.MeetingJoinLink,
		&s.CreatedOn, &s.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSessionRows(rows *sql.Rows) ([]domain.Session, error) {
	defer rows.Close()
	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.SubscriptionID, &s.PackID, &s.ScheduledAt,
			&s.DurationMinutes, &s.Status, &s.CancelledAt, &s.LateCancel,
			&s.MeetingEventID, &s.MeetingJoinLink, &s.CreatedOn, &s.UpdatedOn); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `INSERT INTO sessions (user_id, subscription_id, pack_id, scheduled_at, duration_minutes,
	          status, late_cancel, meeting_event_id, meeting_join_link, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	return r.q.QueryRowContext(ctx, query, session.UserID, session.SubscriptionID, session.PackID,
		session.ScheduledAt, session.DurationMinutes, session.Status, session.LateCancel,
		session.MeetingEventID, session.MeetingJoinLink, now, now).Scan(&session.ID)
}

func (r *sessionRepository) GetSessionByID(ctx context.Context, id int32) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSessionRow(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *sessionRepository) GetSessionByIDForUpdate(ctx context.Context, id int32) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	s, err := scanSessionRow(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *sessionRepository) UpdateSession(ctx context.Context, session *domain.Session) error {
	query := `UPDATE sessions SET subscription_id=$1, pack_id=$2, status=$3, cancelled_at=$4,
	          late_cancel=$5, meeting_event_id=$6, meeting_join_link=$7, updated_on=$8 WHERE id=$9`
	_, err := r.q.ExecContext(ctx, query, session.SubscriptionID, session.PackID, session.Status,
		session.CancelledAt, session.LateCancel, session.MeetingEventID, session.MeetingJoinLink,
		time.Now(), session.ID)
	return err
}

func (r *sessionRepository) SetSessionMeeting(ctx context.Context, sessionID int32, eventID, joinLink string) error {
	query := `UPDATE sessions SET meeting_event_id=$1, meeting_join_link=$2, updated_on=$3 WHERE id=$4`
	_, err := r.q.ExecContext(ctx, query, eventID, joinLink, time.Now(), sessionID)
	return err
}

func (r *sessionRepository) FindPendingSessionByUser(ctx context.Context, userID int32) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 AND status = $2 LIMIT 1`
	s, err := scanSessionRow(r.q.QueryRowContext(ctx, query, userID, domain.SessionStatusScheduled))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *sessionRepository) UserHasSessionBetween(ctx context.Context, userID int32, from, to time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
	            SELECT 1 FROM sessions
	            WHERE user_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3 AND status IN ($4, $5))`
	err := r.q.QueryRowContext(ctx, query, userID, from, to,
		domain.SessionStatusScheduled, domain.SessionStatusCompleted).Scan(&exists)
	return exists, err
}

func (r *sessionRepository) CountScheduledSessionsBetween(ctx context.Context, from, to time.Time) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM sessions WHERE scheduled_at >= $1 AND scheduled_at < $2 AND status = $3`
	err := r.q.QueryRowContext(ctx, query, from, to, domain.SessionStatusScheduled).Scan(&count)
	return count, err
}

func (r *sessionRepository) ListScheduledSessionsBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
	          WHERE scheduled_at >= $1 AND scheduled_at < $2 AND status = $3 ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, from, to, domain.SessionStatusScheduled)
	if err != nil {
		return nil, err
	}
	return scanSessionRows(rows)
}

func (r *sessionRepository) ListScheduledSessionsBetweenForUpdate(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
	          WHERE scheduled_at >= $1 AND scheduled_at < $2 AND status = $3 ORDER BY id FOR UPDATE`
	rows, err := r.q.QueryContext(ctx, query, from, to, domain.SessionStatusScheduled)
	if err != nil {
		return nil, err
	}
	return scanSessionRows(rows)
}

func (r *sessionRepository) ListUserSessionsBetween(ctx context.Context, userID int32, from, to time.Time) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
	          WHERE user_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3 ORDER BY scheduled_at`
	rows, err := r.q.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	return scanSessionRows(rows)
}

func (r *sessionRepository) CompleteElapsedSessions(ctx context.Context, endedBefore time.Time) (int64, error) {
	query := `UPDATE sessions SET status = $1, updated_on = $2
	          WHERE status = $3 AND scheduled_at + (duration_minutes || ' minutes')::interval < $4`
	res, err := r.q.ExecContext(ctx, query, domain.SessionStatusCompleted, time.Now(),
		domain.SessionStatusScheduled, endedBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionRepository) ListScheduledSessionsWithoutMeeting(ctx context.Context) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
	          WHERE status = $1 AND COALESCE(meeting_event_id, '') = '' ORDER BY scheduled_at`
	rows, err := r.q.QueryContext(ctx, query, domain.SessionStatusScheduled)
	if err != nil {
		return nil, err
	}
	return scanSessionRows(rows)
}
