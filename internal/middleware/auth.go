// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/auth"
)

// Context keys set for authenticated requests.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			_ = c.Error(apperror.Unauthorized("Authorization header required"))
			c.Abort()
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			_ = c.Error(apperror.Unauthorized("Invalid or expired token"))
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the identity when a valid token is present and lets
// anonymous requests through. An invalid token is treated as anonymous.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(raw); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(RoleKey, claims.Role)
}

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c *gin.Context) int {
	return c.GetInt(UserIDKey)
}

func Role(c *gin.Context) string {
	return c.GetString(RoleKey)
}
