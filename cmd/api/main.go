package main

import (
	"context"
	"log"

	"github.com/nutriapp/backend/config"
	"github.com/nutriapp/backend/internal/api"
	"github.com/nutriapp/backend/internal/database"
	"github.com/nutriapp/backend/internal/middleware"
	"github.com/nutriapp/backend/internal/router"
	"github.com/nutriapp/backend/internal/server"
	"github.com/nutriapp/backend/internal/service"
	"github.com/nutriapp/backend/internal/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Sessions live in redis when it is reachable. Without redis the app
	// still runs, with in-process sessions and no rate limiting.
	var sessions service.SessionStore
	var creationLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		if config.IsProduction() {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Redis unavailable, using in-memory sessions: %v", err)
		sessions = service.NewMemorySessionStore()
	} else {
		sessions = service.NewRedisSessionStore(redisClient)
		creationLimiter = middleware.NewDishCreationRateLimiter(redisClient)
	}

	authService := service.NewAuthService(db, sessions, cfg.SessionSecret)
	dishService := service.NewDishService(db)

	// Image uploads need S3 credentials; the API runs without them when
	// none are configured.
	var imageService *service.ImageService
	if s3cfg, err := config.NewS3Config(context.Background()); err != nil {
		log.Printf("S3 not configured, image uploads disabled: %v", err)
	} else {
		imageService = service.NewImageService(s3cfg)
	}

	authHandler := api.NewAuthHandler(authService)
	dishHandler := api.NewDishHandler(dishService, imageService, creationLimiter)
	pageHandler := web.NewPageHandler(dishService, authService)

	engine := router.SetupRouter(authHandler, dishHandler, pageHandler, authService)
	srv := server.NewServer(engine, db)

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := srv.Start(cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
