package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_id"

// userIDKey is the gin context key RequireSession stores the caller's ID under.
const userIDKey = "user_id"

// UserIDFromContext returns the user ID stored by RequireSession, or 0 when
// the request carries no session.
func UserIDFromContext(c *gin.Context) int64 {
	v, _ := c.Get(userIDKey)
	id, _ := v.(int64)
	return id
}

// RequireSession rejects requests without a live session cookie and stores
// the session's user ID in the request context.
func RequireSession(sessions *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), sessionID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired or invalid"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}
