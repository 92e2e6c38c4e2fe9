package attendance

import "time"

// Statuses a student record may carry.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Record is one student's entry in a roll call.
type Record struct {
	Student     string `json:"student"`
	StudentName string `json:"studentName,omitempty"`
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
}

// Attendance is a dated roll-call submission for an event. At most one
// submission may exist per (event, date); the constraint lives in the store.
type Attendance struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event"`
	TeacherID string    `json:"teacher"`
	Date      time.Time `json:"date"`
	Records   []Record  `json:"records"`
	CreatedAt time.Time `json:"createdAt"`
}
