package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key holding the authenticated session id
const SessionIDKey = "session_id"

// TokenValidator validates session tokens
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// SessionAuth creates a middleware that requires a valid session bearer token
func SessionAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		sessionID, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			c.Abort()
			return
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session id stored by SessionAuth
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
