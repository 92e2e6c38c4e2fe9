package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schoolhub/internal/audit"
	"schoolhub/internal/auth"
	"schoolhub/internal/event"
)

type eventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Image       string `json:"image"`
}

// CreateEvent creates an event owned by the caller.
func (h *Handler) CreateEvent(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return
	}
	var req eventPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	ev, err := h.events.Create(c.Request.Context(), claims.Subject, event.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Image:       req.Image,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.publishAudit(c.Request.Context(), audit.ActionEventCreated, claims.Subject, ev.ID, ev.Title)
	c.JSON(http.StatusCreated, ev)
}

// ListEvents returns a filtered, paginated page of events.
func (h *Handler) ListEvents(c *gin.Context) {
	q := event.Query{
		Keyword:  c.Query("keyword"),
		Location: c.Query("location"),
		Upcoming: c.Query("upcoming") == "true",
	}
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			q.Page = parsed
		}
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			q.Limit = parsed
		}
	}

	page, err := h.events.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetEvent returns one event by id.
func (h *Handler) GetEvent(c *gin.Context) {
	ev, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// UpdateEvent applies whitelisted fields; organiser only.
func (h *Handler) UpdateEvent(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return
	}
	var req eventPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	ev, err := h.events.Update(c.Request.Context(), c.Param("id"), claims.Subject, event.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Image:       req.Image,
		Date:        req.Date,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.publishAudit(c.Request.Context(), audit.ActionEventUpdated, claims.Subject, ev.ID, ev.Title)
	c.JSON(http.StatusOK, ev)
}

// DeleteEvent removes an event; organiser only.
func (h *Handler) DeleteEvent(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
		return
	}
	id := c.Param("id")
	if err := h.events.Delete(c.Request.Context(), id, claims.Subject); err != nil {
		writeError(c, err)
		return
	}
	h.publishAudit(c.Request.Context(), audit.ActionEventDeleted, claims.Subject, id, "")
	c.JSON(http.StatusOK, gin.H{"message": "Event removed successfully"})
}
