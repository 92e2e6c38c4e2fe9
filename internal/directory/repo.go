// Package directory provides read-only access to the user records owned by
// the identity service. This service never writes to the users table.
package directory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
)

// Repository reads user display data from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Names resolves user ids to display names ("First Last", falling back to
// username). Unknown ids are simply absent from the result.
func (r *Repository) Names(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, first_name, last_name
		FROM users WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, username, first, last string
		if err := rows.Scan(&id, &username, &first, &last); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(first + " " + last)
		if name == "" {
			name = username
		}
		names[id] = name
	}
	return names, rows.Err()
}
