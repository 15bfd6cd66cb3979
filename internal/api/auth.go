package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutriapp/backend/internal/middleware"
	"github.com/nutriapp/backend/internal/service"
	"github.com/nutriapp/backend/internal/types"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes registers the authentication routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/logout", h.Logout)
}

// Login verifies credentials and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email y contraseña son obligatorios", "code": "VALIDATION_ERROR"})
		return
	}

	_, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "code": "INVALID_CREDENTIALS"})
			return
		}
		log.Printf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo iniciar sesión"})
		return
	}

	c.SetCookie(middleware.SessionCookie, token, int(service.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// Register creates a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todos los campos son obligatorios", "code": "VALIDATION_ERROR"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": "El correo ya está registrado", "code": "DUPLICATE_EMAIL"})
			return
		}
		log.Printf("registration failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar usuario"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Logout revokes the session and clears the cookie by expiring it
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			log.Printf("logout: failed to revoke session: %v", err)
		}
	}

	// MaxAge -1 sets an expiry in the past, removing the cookie
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}
