package event

import (
	"context"
	"strings"
	"time"

	"schoolhub/internal/apperr"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type repository interface {
	Get(ctx context.Context, id string) (Event, error)
	Insert(ctx context.Context, ev Event) (Event, error)
	Update(ctx context.Context, id string, upd Update) (Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]Event, int, error)
}

// Service owns event validation and ownership rules.
type Service struct {
	repo repository
	now  func() time.Time
}

// NewService creates a service backed by a repository.
func NewService(repo repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput carries the fields required to create an event.
type CreateInput struct {
	Title       string
	Description string
	Date        string
	Location    string
	Image       string
}

// Create validates the input and persists a new event owned by organiserID.
func (s *Service) Create(ctx context.Context, organiserID string, in CreateInput) (Event, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	location := strings.TrimSpace(in.Location)
	image := strings.TrimSpace(in.Image)
	if title == "" || description == "" || strings.TrimSpace(in.Date) == "" || location == "" || image == "" {
		return Event{}, apperr.BadRequest("all fields are required")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return Event{}, apperr.BadRequest("invalid date")
	}
	return s.repo.Insert(ctx, Event{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		Image:       image,
		OrganiserID: organiserID,
	})
}

// Get returns one event by id.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.repo.Get(ctx, id)
}

// Query holds the list filters and paging controls.
type Query struct {
	Keyword  string
	Location string
	Upcoming bool
	Page     int
	Limit    int
}

// Page is the list response envelope.
type Page struct {
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalEvents int     `json:"totalEvents"`
	Events      []Event `json:"events"`
}

// List returns a filtered page of events sorted by date ascending.
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	f := Filter{
		Keyword:  strings.TrimSpace(q.Keyword),
		Location: strings.TrimSpace(q.Location),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if q.Upcoming {
		now := s.now()
		f.From = &now
	}

	events, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if events == nil {
		events = []Event{}
	}
	return Page{
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalEvents: total,
		Events:      events,
	}, nil
}

// UpdateInput carries the whitelisted update fields. Empty strings are
// ignored, matching the create-side required-field rules.
type UpdateInput struct {
	Title       string
	Description string
	Location    string
	Image       string
	Date        string
}

// Update applies the supplied fields after checking the caller is the
// organiser. A supplied date must parse or the whole update is rejected.
func (s *Service) Update(ctx context.Context, id, callerID string, in UpdateInput) (Event, error) {
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if err := ev.AuthorizeOrganiser(callerID); err != nil {
		return Event{}, err
	}

	var upd Update
	if v := strings.TrimSpace(in.Title); v != "" {
		upd.Title = &v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		upd.Description = &v
	}
	if v := strings.TrimSpace(in.Location); v != "" {
		upd.Location = &v
	}
	if v := strings.TrimSpace(in.Image); v != "" {
		upd.Image = &v
	}
	if strings.TrimSpace(in.Date) != "" {
		date, err := parseDate(in.Date)
		if err != nil {
			return Event{}, apperr.BadRequest("invalid date")
		}
		upd.Date = &date
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete removes an event after checking the caller is the organiser.
func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ev.AuthorizeOrganiser(callerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// parseDate accepts RFC 3339 timestamps or plain calendar dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
