package event

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"schoolhub/internal/apperr"
)

// inmemRepo mirrors the Postgres repository contract for service tests.
type inmemRepo struct {
	events map[string]Event
}

func newInmemRepo() *inmemRepo {
	return &inmemRepo{events: make(map[string]Event)}
}

func (r *inmemRepo) Get(_ context.Context, id string) (Event, error) {
	ev, ok := r.events[id]
	if !ok {
		return Event{}, apperr.NotFound("event not found")
	}
	return ev, nil
}

func (r *inmemRepo) Insert(_ context.Context, ev Event) (Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *inmemRepo) Update(_ context.Context, id string, upd Update) (Event, error) {
	ev, ok := r.events[id]
	if !ok {
		return Event{}, apperr.NotFound("event not found")
	}
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Description != nil {
		ev.Description = *upd.Description
	}
	if upd.Location != nil {
		ev.Location = *upd.Location
	}
	if upd.Image != nil {
		ev.Image = *upd.Image
	}
	if upd.Date != nil {
		ev.Date = *upd.Date
	}
	r.events[id] = ev
	return ev, nil
}

func (r *inmemRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return apperr.NotFound("event not found")
	}
	delete(r.events, id)
	return nil
}

func (r *inmemRepo) List(_ context.Context, f Filter) ([]Event, int, error) {
	var matches []Event
	for _, ev := range r.events {
		if f.Keyword != "" && !strings.Contains(strings.ToLower(ev.Title), strings.ToLower(f.Keyword)) {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(ev.Location), strings.ToLower(f.Location)) {
			continue
		}
		if f.From != nil && ev.Date.Before(*f.From) {
			continue
		}
		matches = append(matches, ev)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })

	total := len(matches)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matches[f.Offset:end], total, nil
}
