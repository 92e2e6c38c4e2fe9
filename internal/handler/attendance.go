package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolhub/internal/attendance"
	"schoolhub/internal/audit"
	"schoolhub/internal/auth"
)

type attendanceRecordPayload struct {
	Student string `json:"student"`
	Status  string `json:"status"`
	Note    string `json:"note"`
}

type submitAttendanceRequest struct {
	EventID string                    `json:"eventId" binding:"required"`
	Date    string                    `json:"date"`
	Records []attendanceRecordPayload `json:"records"`
}

// SubmitAttendance records one roll call; assigned teacher only.
func (h *Handler) SubmitAttendance(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return
	}
	var req submitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "eventId and records are required"})
		return
	}

	in := attendance.SubmitInput{EventID: req.EventID}
	if req.Date != "" {
		when, err := parseDateField(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid date"})
			return
		}
		in.Date = &when
	}
	for _, rec := range req.Records {
		in.Records = append(in.Records, attendance.RecordInput{
			Student: rec.Student,
			Status:  rec.Status,
			Note:    rec.Note,
		})
	}

	att, err := h.attendance.Submit(c.Request.Context(), claims.Subject, in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.publishAudit(c.Request.Context(), audit.ActionAttendanceSubmit, claims.Subject, att.EventID, att.Date.Format("2006-01-02"))
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Attendance recorded successfully",
		"attendance": att,
	})
}

// ListAttendance returns all submissions for an event, newest date first.
func (h *Handler) ListAttendance(c *gin.Context) {
	atts, err := h.attendance.ListByEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, atts)
}
