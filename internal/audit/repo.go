package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Repository persists audit entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one audit row.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, actor_id, event_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.ID, e.Action, e.ActorID, e.EventID, e.Detail, e.CreatedAt)
	return err
}

// ListByEvent returns the newest audit rows for an event.
func (r *Repository) ListByEvent(ctx context.Context, eventID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, actor_id, event_id, COALESCE(detail, ''), created_at
		FROM audit_log
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, eventID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorID, &e.EventID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
