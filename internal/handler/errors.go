package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolhub/internal/apperr"
)

// writeError maps service error kinds to HTTP statuses. Everything is a
// {"message": ...} body; unexpected errors are logged and returned as 500.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrUnassigned), errors.Is(err, apperr.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(status, gin.H{"message": apperr.Message(err)})
}
