package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nutriapp/backend/internal/models"
	"github.com/nutriapp/backend/internal/types"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrNoSession          = errors.New("no session")
)

// AuthService handles registration, login and session verification
type AuthService struct {
	db       *gorm.DB
	sessions SessionStore
	secret   string
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB, sessions SessionStore, secret string) *AuthService {
	return &AuthService{
		db:       db,
		sessions: sessions,
		secret:   secret,
	}
}

// Register creates a new user with a bcrypt-hashed password. Email uniqueness
// is checked before insert and enforced again by the unique index.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Nationality:  req.Nationality,
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Login verifies the credentials and issues a new session. The returned
// token is the signed cookie value; its session id is recorded server-side.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	sessionID := uuid.New()
	if err := s.sessions.Save(ctx, sessionID, user.ID, SessionTTL); err != nil {
		return nil, "", err
	}

	token, err := s.signSession(sessionID, user.ID)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Logout revokes the session behind the given cookie value. An invalid or
// already-revoked token is not an error; the cookie is cleared either way.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseSession(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.SessionID)
}

// ValidateSession checks the cookie value: the signature must verify and the
// session id must still exist in the store. Returns the owning user id.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrNoSession
	}

	claims, err := s.parseSession(token)
	if err != nil {
		return uuid.Nil, ErrNoSession
	}

	userID, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return uuid.Nil, ErrNoSession
	}
	if userID != claims.UserID {
		return uuid.Nil, ErrNoSession
	}

	return userID, nil
}

func (s *AuthService) signSession(sessionID, userID uuid.UUID) (string, error) {
	claims := &types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		SessionID: sessionID,
		UserID:    userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *AuthService) parseSession(tokenString string) (*types.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*types.SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
