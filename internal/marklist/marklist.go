package marklist

import "time"

// Score bounds for the four components.
const (
	MaxAttendanceScore = 10
	MaxTestScore       = 20
	MaxMidExam         = 30
	MaxFinalExam       = 40
)

// Marklist is one student's grade record for one event. TotalScore is
// derived from the four components on every save and never taken from the
// caller. Grade is free text supplied by the teacher, never computed here.
type Marklist struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event"`
	StudentID       string    `json:"student"`
	StudentName     string    `json:"studentName,omitempty"`
	TeacherID       string    `json:"teacher"`
	AttendanceScore int       `json:"attendanceScore"`
	TestScore       int       `json:"testScore"`
	MidExam         int       `json:"midExam"`
	FinalExam       int       `json:"finalExam"`
	TotalScore      int       `json:"totalScore"`
	Grade           string    `json:"grade,omitempty"`
	TeacherNote     string    `json:"teacherNote,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
