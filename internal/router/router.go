package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nutriapp/backend/internal/api"
	"github.com/nutriapp/backend/internal/middleware"
	"github.com/nutriapp/backend/internal/service"
	"github.com/nutriapp/backend/internal/web"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	dishHandler *api.DishHandler,
	pageHandler *web.PageHandler,
	authService *service.AuthService,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://frontend:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	router.SetHTMLTemplate(web.Templates())

	router.GET("/health", api.HealthCheck)

	// API routes
	apiGroup := router.Group("/api")
	apiGroup.GET("/health", api.HealthCheck)
	authHandler.RegisterRoutes(apiGroup)

	// Protected dish routes
	protected := apiGroup.Group("")
	protected.Use(middleware.SessionGuard(authService))
	dishHandler.RegisterRoutes(protected)

	// HTML pages
	pageHandler.RegisterRoutes(router)

	return router
}
