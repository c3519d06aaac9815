package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/service"
)

// Gin context keys set by the auth middleware.
const (
	ContextUserID   = "auth_user_id"
	ContextUsername = "auth_username"
)

// bearerToken extracts the token from the Authorization header, if any.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func setIdentity(c *gin.Context, claims *service.Claims) {
	c.Set(ContextUserID, claims.Subject)
	c.Set(ContextUsername, claims.Username)
	ctx := logger.WithField(c.Request.Context(), logger.FieldUserID, claims.Subject)
	c.Request = c.Request.WithContext(ctx)
}

// RequireAuth returns a middleware that rejects requests without a valid
// bearer token.
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth returns a middleware that attaches the caller's identity
// when a valid bearer token is present and proceeds anonymously otherwise.
// An invalid token never fails the request.
func OptionalAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.VerifyToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// UserIDPtr returns the authenticated user ID, or nil for anonymous
// callers. Use with OptionalAuth.
func UserIDPtr(c *gin.Context) *string {
	if id := c.GetString(ContextUserID); id != "" {
		return &id
	}
	return nil
}
