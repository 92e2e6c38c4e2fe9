package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolhub/internal/audit"
	"schoolhub/internal/auth"
	"schoolhub/internal/marklist"
)

// quizScore is the wire name for the test-score component.
type upsertMarklistRequest struct {
	EventID         string  `json:"eventId" binding:"required"`
	StudentID       string  `json:"studentId" binding:"required"`
	AttendanceScore *int    `json:"attendanceScore"`
	QuizScore       *int    `json:"quizScore"`
	MidExam         *int    `json:"midExam"`
	FinalExam       *int    `json:"finalExam"`
	Grade           *string `json:"grade"`
	TeacherNote     *string `json:"teacherNote"`
}

// UpsertMarklist creates or updates a student's grades; assigned teacher only.
func (h *Handler) UpsertMarklist(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return
	}
	var req upsertMarklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "eventId and studentId are required"})
		return
	}

	ml, err := h.marklists.Upsert(c.Request.Context(), claims.Subject, marklist.UpsertInput{
		EventID:         req.EventID,
		StudentID:       req.StudentID,
		AttendanceScore: req.AttendanceScore,
		TestScore:       req.QuizScore,
		MidExam:         req.MidExam,
		FinalExam:       req.FinalExam,
		Grade:           req.Grade,
		TeacherNote:     req.TeacherNote,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.publishAudit(c.Request.Context(), audit.ActionMarklistUpsert, claims.Subject, ml.EventID, ml.StudentID)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Grades updated successfully",
		"marklist": ml,
	})
}

// ListMarklists returns all grade records for an event.
func (h *Handler) ListMarklists(c *gin.Context) {
	mls, err := h.marklists.ListByEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mls)
}
