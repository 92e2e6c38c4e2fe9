package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"schoolhub/internal/attendance"
	"schoolhub/internal/audit"
	"schoolhub/internal/cloudinary"
	"schoolhub/internal/event"
	"schoolhub/internal/marklist"
	"schoolhub/internal/queue"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	events     *event.Service
	attendance *attendance.Service
	marklists  *marklist.Service
	auditLog   *audit.Repository
	cloud      *cloudinary.Client // nil if Cloudinary not configured
	audits     queue.Queue        // nil disables the audit trail
}

// New creates a handler.
func New(events *event.Service, att *attendance.Service, mls *marklist.Service, auditLog *audit.Repository, cloud *cloudinary.Client, audits queue.Queue) *Handler {
	return &Handler{
		events:     events,
		attendance: att,
		marklists:  mls,
		auditLog:   auditLog,
		cloud:      cloud,
		audits:     audits,
	}
}

// Register mounts all routes. The middleware arguments come from the auth
// package; tests inject stand-ins.
func (h *Handler) Register(r gin.IRouter, authn, teacherOnly, adminOnly gin.HandlerFunc) {
	v1 := r.Group("/v1")

	v1.GET("/events", h.ListEvents)
	v1.GET("/events/:id", h.GetEvent)

	authed := v1.Group("", authn)
	authed.POST("/events", h.CreateEvent)
	authed.PUT("/events/:id", h.UpdateEvent)
	authed.DELETE("/events/:id", h.DeleteEvent)
	authed.GET("/attendance/:eventId", h.ListAttendance)
	authed.GET("/marklist/event/:eventId", h.ListMarklists)
	authed.POST("/uploads", h.Upload)

	teacher := authed.Group("", teacherOnly)
	teacher.POST("/attendance/submit", h.SubmitAttendance)
	teacher.POST("/marklist/upsert", h.UpsertMarklist)

	admin := authed.Group("", adminOnly)
	admin.GET("/audit/:eventId", h.ListAudit)
}

// publishAudit enqueues an audit entry; failures are logged, never surfaced.
func (h *Handler) publishAudit(ctx context.Context, action, actorID, eventID, detail string) {
	if h.audits == nil {
		return
	}
	entry := audit.Entry{Action: action, ActorID: actorID, EventID: eventID, Detail: detail, CreatedAt: time.Now().UTC()}
	if err := h.audits.Publish(ctx, queue.Message{Type: "audit", Body: audit.Encode(entry)}); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}

// ListAudit returns the newest audit rows for an event (admin only).
func (h *Handler) ListAudit(c *gin.Context) {
	entries, err := h.auditLog.ListByEvent(c.Request.Context(), c.Param("eventId"), 50)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// parseDateField accepts RFC 3339 timestamps or plain calendar dates.
func parseDateField(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
