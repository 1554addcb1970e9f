// Package middleware provides the gin middleware chain: authentication,
// request logging, and metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yuchou/tripledger/internal/auth"
)

const (
	// userIDKey is the gin context key for the authenticated user ID.
	userIDKey = "user_id"
	// emailKey is the gin context key for the authenticated user's email.
	emailKey = "email"
)

// UserID extracts the authenticated user ID from the request context.
// Returns empty string if not set.
func UserID(c *gin.Context) string {
	id, _ := c.Value(userIDKey).(string)
	return id
}

// Email extracts the authenticated user's email from the request context.
func Email(c *gin.Context) string {
	email, _ := c.Value(emailKey).(string)
	return email
}

// RequireAuth validates the Bearer token and adds the user ID and email to
// the request context. Requests without a valid token are rejected with
// 401.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}
