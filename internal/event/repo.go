package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schoolhub/internal/apperr"
)

// Repository persists events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns a single event by id.
func (r *Repository) Get(ctx context.Context, id string) (Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, date, location, image, organiser_id, teacher_id, created_at, updated_at
		FROM events WHERE id = $1
	`, id)
	var ev Event
	if err := row.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date, &ev.Location, &ev.Image, &ev.OrganiserID, &ev.TeacherID, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, apperr.NotFound("event not found")
		}
		return Event{}, err
	}
	return ev, nil
}

// Insert writes a new event.
func (r *Repository) Insert(ctx context.Context, ev Event) (Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO events (id, title, description, date, location, image, organiser_id, teacher_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at
	`, ev.ID, ev.Title, ev.Description, ev.Date, ev.Location, ev.Image, ev.OrganiserID, ev.TeacherID)
	if err := row.Scan(&ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Update holds the whitelisted fields an organiser may change. Nil fields
// are left untouched.
type Update struct {
	Title       *string
	Description *string
	Location    *string
	Image       *string
	Date        *time.Time
}

// Update applies the non-nil fields and returns the updated event.
func (r *Repository) Update(ctx context.Context, id string, upd Update) (Event, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}

	query := "UPDATE events SET " + joinClauses(sets, ", ") + ` WHERE id = $1
		RETURNING id, title, description, date, location, image, organiser_id, teacher_id, created_at, updated_at`
	row := r.db.QueryRowContext(ctx, query, args...)
	var ev Event
	if err := row.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date, &ev.Location, &ev.Image, &ev.OrganiserID, &ev.TeacherID, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, apperr.NotFound("event not found")
		}
		return Event{}, err
	}
	return ev, nil
}

// Delete removes an event.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("event not found")
	}
	return nil
}

// Filter narrows the event listing. From, when set, keeps only events on or
// after that instant.
type Filter struct {
	Keyword  string
	Location string
	From     *time.Time
	Limit    int
	Offset   int
}

// List returns one page of matching events sorted by date ascending, plus
// the total match count before paging. The organiser display name is joined
// from the users table.
func (r *Repository) List(ctx context.Context, f Filter) ([]Event, int, error) {
	clauses := []string{}
	args := []any{}
	if f.Keyword != "" {
		args = append(args, "%"+f.Keyword+"%")
		clauses = append(clauses, fmt.Sprintf("e.title ILIKE $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, "%"+f.Location+"%")
		clauses = append(clauses, fmt.Sprintf("e.location ILIKE $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		clauses = append(clauses, fmt.Sprintf("e.date >= $%d", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + joinClauses(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events e"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT e.id, e.title, e.description, e.date, e.location, e.image,
		       e.organiser_id, COALESCE(u.username, ''), e.teacher_id, e.created_at, e.updated_at
		FROM events e
		LEFT JOIN users u ON u.id = e.organiser_id` + where +
		fmt.Sprintf(" ORDER BY e.date ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var res []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date, &ev.Location, &ev.Image, &ev.OrganiserID, &ev.OrganiserName, &ev.TeacherID, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, 0, err
		}
		res = append(res, ev)
	}
	return res, total, rows.Err()
}

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
