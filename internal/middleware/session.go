package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie holds the opaque session id.
const SessionCookie = "inkfront_session"

type SessionChecker interface {
	IsAuthenticated(ctx context.Context, id string) bool
}

// RequireSession stops requests that do not carry a granted session.
func RequireSession(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		if !sessions.IsAuthenticated(c.Request.Context(), id) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}
