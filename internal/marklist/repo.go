package marklist

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"schoolhub/internal/apperr"
	"schoolhub/internal/store"
)

// Repository persists marklists in Postgres. One row per (event, student).
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByEventStudent returns the marklist for a (event, student) pair, or
// NotFound when none exists yet.
func (r *Repository) GetByEventStudent(ctx context.Context, eventID, studentID string) (Marklist, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, student_id, teacher_id,
		       attendance_score, test_score, mid_exam, final_exam, total_score,
		       COALESCE(grade, ''), COALESCE(teacher_note, ''), created_at, updated_at
		FROM marklists
		WHERE event_id = $1 AND student_id = $2
	`, eventID, studentID)
	var ml Marklist
	if err := scanMarklist(row.Scan, &ml); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Marklist{}, apperr.NotFound("marklist not found")
		}
		return Marklist{}, err
	}
	return ml, nil
}

// Insert writes a new marklist row.
func (r *Repository) Insert(ctx context.Context, ml Marklist) (Marklist, error) {
	if ml.ID == "" {
		ml.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO marklists (id, event_id, student_id, teacher_id,
			attendance_score, test_score, mid_exam, final_exam, total_score, grade, teacher_note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),NULLIF($11,''))
		RETURNING created_at, updated_at
	`, ml.ID, ml.EventID, ml.StudentID, ml.TeacherID,
		ml.AttendanceScore, ml.TestScore, ml.MidExam, ml.FinalExam, ml.TotalScore, ml.Grade, ml.TeacherNote)
	if err := row.Scan(&ml.CreatedAt, &ml.UpdatedAt); err != nil {
		if store.IsUniqueViolation(err) {
			return Marklist{}, apperr.Conflict("marklist already exists for this student")
		}
		return Marklist{}, err
	}
	return ml, nil
}

// Save overwrites an existing marklist row.
func (r *Repository) Save(ctx context.Context, ml Marklist) (Marklist, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE marklists
		SET teacher_id = $2, attendance_score = $3, test_score = $4, mid_exam = $5,
		    final_exam = $6, total_score = $7, grade = NULLIF($8,''), teacher_note = NULLIF($9,''),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, ml.ID, ml.TeacherID, ml.AttendanceScore, ml.TestScore, ml.MidExam, ml.FinalExam,
		ml.TotalScore, ml.Grade, ml.TeacherNote)
	if err := row.Scan(&ml.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Marklist{}, apperr.NotFound("marklist not found")
		}
		return Marklist{}, err
	}
	return ml, nil
}

// ListByEvent returns all marklists for an event.
func (r *Repository) ListByEvent(ctx context.Context, eventID string) ([]Marklist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, student_id, teacher_id,
		       attendance_score, test_score, mid_exam, final_exam, total_score,
		       COALESCE(grade, ''), COALESCE(teacher_note, ''), created_at, updated_at
		FROM marklists
		WHERE event_id = $1
		ORDER BY created_at ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Marklist
	for rows.Next() {
		var ml Marklist
		if err := scanMarklist(rows.Scan, &ml); err != nil {
			return nil, err
		}
		res = append(res, ml)
	}
	return res, rows.Err()
}

func scanMarklist(scan func(...any) error, ml *Marklist) error {
	return scan(&ml.ID, &ml.EventID, &ml.StudentID, &ml.TeacherID,
		&ml.AttendanceScore, &ml.TestScore, &ml.MidExam, &ml.FinalExam, &ml.TotalScore,
		&ml.Grade, &ml.TeacherNote, &ml.CreatedAt, &ml.UpdatedAt)
}
