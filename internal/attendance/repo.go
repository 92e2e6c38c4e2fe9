package attendance

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"schoolhub/internal/apperr"
	"schoolhub/internal/store"
)

// Repository persists attendance submissions in Postgres. Records are kept
// as a jsonb column so each submission is a single row and each write
// targets exactly one entity.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new submission. The (event_id, date) uniqueness is not
// pre-checked; a store-level violation surfaces as Conflict, so concurrent
// duplicates resolve to one winner.
func (r *Repository) Insert(ctx context.Context, att Attendance) (Attendance, error) {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	records, err := json.Marshal(att.Records)
	if err != nil {
		return Attendance{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendances (id, event_id, teacher_id, date, records)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, att.ID, att.EventID, att.TeacherID, att.Date, records)
	if err := row.Scan(&att.CreatedAt); err != nil {
		if store.IsUniqueViolation(err) {
			return Attendance{}, apperr.Conflict("attendance already submitted for this event on %s", att.Date.Format("2006-01-02"))
		}
		return Attendance{}, err
	}
	return att, nil
}

// ListByEvent returns all submissions for an event, newest date first.
func (r *Repository) ListByEvent(ctx context.Context, eventID string) ([]Attendance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, teacher_id, date, records, created_at
		FROM attendances
		WHERE event_id = $1
		ORDER BY date DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Attendance
	for rows.Next() {
		var att Attendance
		var records []byte
		if err := rows.Scan(&att.ID, &att.EventID, &att.TeacherID, &att.Date, &records, &att.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(records, &att.Records); err != nil {
			return nil, err
		}
		res = append(res, att)
	}
	return res, rows.Err()
}
