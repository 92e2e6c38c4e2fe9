package attendance

import (
	"context"
	"time"

	"schoolhub/internal/apperr"
	"schoolhub/internal/event"
)

type repository interface {
	Insert(ctx context.Context, att Attendance) (Attendance, error)
	ListByEvent(ctx context.Context, eventID string) ([]Attendance, error)
}

type eventGetter interface {
	Get(ctx context.Context, id string) (event.Event, error)
}

type nameResolver interface {
	Names(ctx context.Context, ids []string) (map[string]string, error)
}

// Service validates and records roll-call submissions.
type Service struct {
	repo   repository
	events eventGetter
	names  nameResolver
	now    func() time.Time
}

// NewService creates a service backed by a repository.
func NewService(repo repository, events eventGetter, names nameResolver) *Service {
	return &Service{repo: repo, events: events, names: names, now: time.Now}
}

// RecordInput is one per-student entry in a submission.
type RecordInput struct {
	Student string
	Status  string
	Note    string
}

// SubmitInput is a full roll-call submission. Date defaults to the
// submission time when nil.
type SubmitInput struct {
	EventID string
	Date    *time.Time
	Records []RecordInput
}

// Submit authorizes the caller as the event's assigned teacher, validates
// the records and persists one submission for the calendar date.
func (s *Service) Submit(ctx context.Context, teacherID string, in SubmitInput) (Attendance, error) {
	ev, err := s.events.Get(ctx, in.EventID)
	if err != nil {
		return Attendance{}, err
	}
	if err := ev.AuthorizeTeacher(teacherID); err != nil {
		return Attendance{}, err
	}

	if len(in.Records) == 0 {
		return Attendance{}, apperr.BadRequest("at least one attendance record is required")
	}
	records := make([]Record, 0, len(in.Records))
	for _, rec := range in.Records {
		if rec.Student == "" {
			return Attendance{}, apperr.BadRequest("every record needs a student")
		}
		status := rec.Status
		if status == "" {
			status = StatusPresent
		}
		if status != StatusPresent && status != StatusAbsent && status != StatusLate {
			return Attendance{}, apperr.BadRequest("invalid status %q for student %s", rec.Status, rec.Student)
		}
		records = append(records, Record{Student: rec.Student, Status: status, Note: rec.Note})
	}

	when := s.now()
	if in.Date != nil {
		when = *in.Date
	}

	return s.repo.Insert(ctx, Attendance{
		EventID:   in.EventID,
		TeacherID: teacherID,
		Date:      calendarDate(when),
		Records:   records,
	})
}

// ListByEvent returns all submissions for an event, newest date first, with
// each record's student resolved to a display name.
func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]Attendance, error) {
	atts, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 {
		return []Attendance{}, nil
	}

	var ids []string
	seen := map[string]bool{}
	for _, att := range atts {
		for _, rec := range att.Records {
			if !seen[rec.Student] {
				seen[rec.Student] = true
				ids = append(ids, rec.Student)
			}
		}
	}
	names, err := s.names.Names(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range atts {
		for j := range atts[i].Records {
			atts[i].Records[j].StudentName = names[atts[i].Records[j].Student]
		}
	}
	return atts, nil
}

// calendarDate truncates an instant to its UTC calendar date, the grain at
// which duplicate submissions are rejected.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
