package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imagegenhub/server/internal/service"
)

// UploadHandler handles the meme image upload endpoint.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload handles POST /api/memes/upload. Expects a multipart form with a
// single "image" file.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read image file"})
		return
	}
	defer file.Close()

	result, err := h.uploads.Save(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Image uploaded successfully",
		"imageUrl": result.URL,
		"key":      result.Key,
		"width":    result.Width,
		"height":   result.Height,
	})
}
