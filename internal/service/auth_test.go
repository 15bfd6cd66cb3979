package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriapp/backend/internal/service"
	"github.com/nutriapp/backend/internal/testhelpers"
	"github.com/nutriapp/backend/internal/types"
)

func setupAuthService(t *testing.T) *service.AuthService {
	db := testhelpers.SetupTestDatabase(t)
	return service.NewAuthService(db, service.NewMemorySessionStore(), "test-secret")
}

func registerRequest() *types.RegisterRequest {
	return &types.RegisterRequest{
		FirstName:   "Test",
		LastName:    "User",
		Email:       "test@nutriapp.com",
		Nationality: "Chile",
		Phone:       "123456789",
		Password:    "nutriapp123",
	}
}

func TestRegister(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@nutriapp.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "nutriapp123", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.FirstName = "Other"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "test@nutriapp.com", "nutriapp123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	userID, err := svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "test@nutriapp.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := setupAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody@nutriapp.com", "nutriapp123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginIssuesIndependentSessions(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, first, err := svc.Login(ctx, "test@nutriapp.com", "nutriapp123")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "test@nutriapp.com", "nutriapp123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Revoking one session leaves the other valid.
	require.NoError(t, svc.Logout(ctx, first))

	_, err = svc.ValidateSession(ctx, first)
	assert.ErrorIs(t, err, service.ErrNoSession)

	_, err = svc.ValidateSession(ctx, second)
	assert.NoError(t, err)
}

func TestValidateSessionRejectsTamperedToken(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "test@nutriapp.com", "nutriapp123")
	require.NoError(t, err)

	_, err = svc.ValidateSession(ctx, token+"x")
	assert.ErrorIs(t, err, service.ErrNoSession)

	_, err = svc.ValidateSession(ctx, "not-a-token")
	assert.ErrorIs(t, err, service.ErrNoSession)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "test@nutriapp.com", "nutriapp123")
	require.NoError(t, err)

	assert.NoError(t, svc.Logout(ctx, token))
	assert.NoError(t, svc.Logout(ctx, token))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := service.NewMemorySessionStore()
	ctx := context.Background()
	sessionID, userID := uuid.New(), uuid.New()

	require.NoError(t, store.Save(ctx, sessionID, userID, -time.Second))

	_, err := store.Get(ctx, sessionID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}
