package event

import (
	"time"

	"schoolhub/internal/apperr"
)

// Event is a scheduled class or session. The organiser owns the record;
// the assigned teacher (optional) is the only user allowed to submit
// attendance and marklists for it.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	Image         string    `json:"image"`
	OrganiserID   string    `json:"organiser"`
	OrganiserName string    `json:"organiserName,omitempty"`
	TeacherID     *string   `json:"teacher,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AuthorizeOrganiser allows only the organiser to mutate or delete the event.
func (e Event) AuthorizeOrganiser(callerID string) error {
	if e.OrganiserID != callerID {
		return apperr.Forbidden("not authorized to modify this event")
	}
	return nil
}

// AuthorizeTeacher allows only the assigned teacher to submit attendance or
// marklist entries for the event.
func (e Event) AuthorizeTeacher(callerID string) error {
	if e.TeacherID == nil || *e.TeacherID == "" {
		return apperr.Unassigned("this event does not have a teacher assigned")
	}
	if *e.TeacherID != callerID {
		return apperr.Forbidden("you are not the assigned teacher for this event")
	}
	return nil
}
