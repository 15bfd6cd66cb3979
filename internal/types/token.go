package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the claims carried by the signed session cookie. The
// SessionID must also exist in the server-side session store for the token
// to be accepted.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
}
