// Package audit records who changed what. The API publishes entries onto
// the queue after successful writes; the worker drains them into Postgres.
package audit

import (
	"encoding/json"
	"time"
)

// Actions recorded by the API.
const (
	ActionEventCreated     = "event.created"
	ActionEventUpdated     = "event.updated"
	ActionEventDeleted     = "event.deleted"
	ActionAttendanceSubmit = "attendance.submitted"
	ActionMarklistUpsert   = "marklist.upserted"
)

// Entry is one audit record.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor"`
	EventID   string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Encode serializes an entry for the queue.
func Encode(e Entry) []byte {
	data, _ := json.Marshal(e)
	return data
}

// Decode parses a queued entry.
func Decode(data []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(data, &e)
	return e, err
}
