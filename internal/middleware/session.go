package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

// SessionValidator verifies a session cookie value and resolves its user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (uuid.UUID, error)
}

// SessionGuard protects API routes. Requests without a verifiable session
// are rejected with a 401 JSON payload.
func SessionGuard(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := validate(c, validator)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Debes iniciar sesión para continuar",
				"code":  "NO_SESSION",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// PageGuard protects server-rendered pages. A failed check redirects to the
// login page instead of answering with an error payload.
func PageGuard(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := validate(c, validator)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func validate(c *gin.Context, validator SessionValidator) (uuid.UUID, error) {
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return uuid.Nil, err
	}
	return validator.ValidateSession(c.Request.Context(), token)
}

// UserID returns the authenticated user id set by the guard.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok
}
