package marklist

import (
	"context"
	"errors"

	"schoolhub/internal/apperr"
	"schoolhub/internal/event"
)

type repository interface {
	GetByEventStudent(ctx context.Context, eventID, studentID string) (Marklist, error)
	Insert(ctx context.Context, ml Marklist) (Marklist, error)
	Save(ctx context.Context, ml Marklist) (Marklist, error)
	ListByEvent(ctx context.Context, eventID string) ([]Marklist, error)
}

type eventGetter interface {
	Get(ctx context.Context, id string) (event.Event, error)
}

type nameResolver interface {
	Names(ctx context.Context, ids []string) (map[string]string, error)
}

// Service owns grade aggregation: score bounds, the omitted-vs-zero merge
// rules and the derived total.
type Service struct {
	repo   repository
	events eventGetter
	names  nameResolver
}

// NewService creates a service backed by a repository.
func NewService(repo repository, events eventGetter, names nameResolver) *Service {
	return &Service{repo: repo, events: events, names: names}
}

// UpsertInput carries a grade submission. Score and text fields are
// pointers: nil leaves the stored value unchanged, so an explicit zero is
// distinguishable from an omitted field.
type UpsertInput struct {
	EventID         string
	StudentID       string
	AttendanceScore *int
	TestScore       *int
	MidExam         *int
	FinalExam       *int
	Grade           *string
	TeacherNote     *string
}

// Upsert creates or updates the student's marklist for an event. Only the
// event's assigned teacher may write. The total score is recomputed from
// the four components on every save; caller-supplied totals are ignored.
// Concurrent upserts to the same pair resolve last-write-wins.
func (s *Service) Upsert(ctx context.Context, teacherID string, in UpsertInput) (Marklist, error) {
	ev, err := s.events.Get(ctx, in.EventID)
	if err != nil {
		return Marklist{}, err
	}
	if err := ev.AuthorizeTeacher(teacherID); err != nil {
		return Marklist{}, err
	}
	if in.StudentID == "" {
		return Marklist{}, apperr.BadRequest("studentId is required")
	}
	if err := validateScores(in); err != nil {
		return Marklist{}, err
	}

	ml, err := s.repo.GetByEventStudent(ctx, in.EventID, in.StudentID)
	fresh := false
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return Marklist{}, err
		}
		fresh = true
		ml = Marklist{EventID: in.EventID, StudentID: in.StudentID}
	}
	ml.TeacherID = teacherID

	if in.AttendanceScore != nil {
		ml.AttendanceScore = *in.AttendanceScore
	}
	if in.TestScore != nil {
		ml.TestScore = *in.TestScore
	}
	if in.MidExam != nil {
		ml.MidExam = *in.MidExam
	}
	if in.FinalExam != nil {
		ml.FinalExam = *in.FinalExam
	}
	if in.Grade != nil {
		ml.Grade = *in.Grade
	}
	if in.TeacherNote != nil {
		ml.TeacherNote = *in.TeacherNote
	}
	ml.TotalScore = ml.AttendanceScore + ml.TestScore + ml.MidExam + ml.FinalExam

	if fresh {
		return s.repo.Insert(ctx, ml)
	}
	return s.repo.Save(ctx, ml)
}

// ListByEvent returns all marklists for an event with student display names
// resolved.
func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]Marklist, error) {
	mls, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(mls) == 0 {
		return []Marklist{}, nil
	}
	ids := make([]string, 0, len(mls))
	for _, ml := range mls {
		ids = append(ids, ml.StudentID)
	}
	names, err := s.names.Names(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range mls {
		mls[i].StudentName = names[mls[i].StudentID]
	}
	return mls, nil
}

func validateScores(in UpsertInput) error {
	checks := []struct {
		name  string
		value *int
		max   int
	}{
		{"attendanceScore", in.AttendanceScore, MaxAttendanceScore},
		{"quizScore", in.TestScore, MaxTestScore},
		{"midExam", in.MidExam, MaxMidExam},
		{"finalExam", in.FinalExam, MaxFinalExam},
	}
	for _, c := range checks {
		if c.value != nil && (*c.value < 0 || *c.value > c.max) {
			return apperr.BadRequest("%s must be between 0 and %d", c.name, c.max)
		}
	}
	return nil
}
