package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nutriapp/backend/internal/middleware"
	"github.com/nutriapp/backend/internal/models"
	"github.com/nutriapp/backend/internal/service"
	"github.com/nutriapp/backend/internal/testhelpers"
	"github.com/nutriapp/backend/internal/types"
)

// setupTestRouter builds a router with the auth routes and the guarded dish
// routes wired to an in-memory database.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	authService := service.NewAuthService(db, service.NewMemorySessionStore(), "test-secret")
	dishService := service.NewDishService(db)

	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	NewAuthHandler(authService).RegisterRoutes(apiGroup)

	protected := apiGroup.Group("")
	protected.Use(middleware.SessionGuard(authService))
	NewDishHandler(dishService, nil, nil).RegisterRoutes(protected)

	return router, db, authService
}

// createTestUserSession registers a user with the given email and logs in,
// returning the user and the session cookie to attach to requests.
func createTestUserSession(t *testing.T, auth *service.AuthService, email string) (*models.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()

	user, err := auth.Register(ctx, &types.RegisterRequest{
		FirstName:   "Test",
		LastName:    "User",
		Email:       email,
		Nationality: "Chile",
		Phone:       "123456789",
		Password:    "nutriapp123",
	})
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}

	_, token, err := auth.Login(ctx, user.Email, "nutriapp123")
	if err != nil {
		t.Fatalf("failed to log in test user: %v", err)
	}

	return user, &http.Cookie{Name: middleware.SessionCookie, Value: token}
}
