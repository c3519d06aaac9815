package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/service"
)

// respondError maps service failure classes to HTTP statuses. Unrecognized
// errors are reported as an opaque server error and logged with detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrInvalidVoteType),
		errors.Is(err, service.ErrCommentTooLong),
		errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrMissingImage),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrNotAnImage):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	default:
		logger.CtxError(c.Request.Context(), "Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
