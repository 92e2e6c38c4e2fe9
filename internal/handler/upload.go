package handler

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"schoolhub/internal/cloudinary"
)

// Upload accepts an event poster image as multipart file or base64 data URL
// and returns the public Cloudinary URL to place in the event's image field.
func (h *Handler) Upload(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "image storage not configured"})
		return
	}

	contentType := c.ContentType()
	var result *cloudinary.UploadResult
	var err error

	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "read file failed"})
			return
		}
		result, err = h.cloud.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = h.cloud.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "image upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       result.SecureURL,
		"public_id": result.PublicID,
		"width":     result.Width,
		"height":    result.Height,
		"bytes":     result.Bytes,
	})
}
