package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutriapp/backend/internal/middleware"
	"github.com/nutriapp/backend/internal/service"
	"github.com/nutriapp/backend/internal/types"
)

// maxImageSize caps dish image uploads at 5 MiB.
const maxImageSize = 5 << 20

// DishHandler handles dish CRUD requests
type DishHandler struct {
	dishes          *service.DishService
	images          *service.ImageService
	creationLimiter *middleware.RateLimiter
}

// NewDishHandler creates a new DishHandler. The image service and the rate
// limiter are optional; routes depending on them degrade gracefully.
func NewDishHandler(dishes *service.DishService, images *service.ImageService, creationLimiter *middleware.RateLimiter) *DishHandler {
	return &DishHandler{
		dishes:          dishes,
		images:          images,
		creationLimiter: creationLimiter,
	}
}

// RegisterRoutes registers the dish routes on an already-guarded group
func (h *DishHandler) RegisterRoutes(router *gin.RouterGroup) {
	dishes := router.Group("/dishes")
	{
		dishes.GET("", h.ListDishes)
		dishes.GET("/:id", h.GetDish)
		if h.creationLimiter != nil {
			dishes.POST("", h.creationLimiter.RateLimitMiddleware(), h.CreateDish)
		} else {
			dishes.POST("", h.CreateDish)
		}
		dishes.PUT("/:id", h.UpdateDish)
		dishes.DELETE("/:id", h.DeleteDish)
		dishes.POST("/:id/image", h.UploadDishImage)
	}
}

// ListDishes returns all dishes ordered by creation
func (h *DishHandler) ListDishes(c *gin.Context) {
	dishes, err := h.dishes.ListDishes(c.Request.Context(), c.Query("q"))
	if err != nil {
		log.Printf("failed to list dishes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudieron cargar los platillos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dishes": dishes})
}

// GetDish returns a single dish by id
func (h *DishHandler) GetDish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Platillo no encontrado", "code": "NOT_FOUND"})
		return
	}

	dish, err := h.dishes.GetDish(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dish": dish})
}

// CreateDish creates a dish owned by the session user
func (h *DishHandler) CreateDish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Debes iniciar sesión para continuar", "code": "NO_SESSION"})
		return
	}

	var req types.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de la solicitud inválido", "code": "VALIDATION_ERROR"})
		return
	}

	dish, err := h.dishes.CreateDish(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"dish": dish})
}

// UpdateDish replaces all mutable fields of a dish
func (h *DishHandler) UpdateDish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Debes iniciar sesión para continuar", "code": "NO_SESSION"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Platillo no encontrado", "code": "NOT_FOUND"})
		return
	}

	var req types.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de la solicitud inválido", "code": "VALIDATION_ERROR"})
		return
	}

	dish, err := h.dishes.UpdateDish(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dish": dish})
}

// DeleteDish removes a dish; deleting an absent id fails with NOT_FOUND
func (h *DishHandler) DeleteDish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Debes iniciar sesión para continuar", "code": "NO_SESSION"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Platillo no encontrado", "code": "NOT_FOUND"})
		return
	}

	if err := h.dishes.DeleteDish(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Platillo eliminado correctamente"})
}

// UploadDishImage stores a multipart image in S3 and writes the URL back
func (h *DishHandler) UploadDishImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Debes iniciar sesión para continuar", "code": "NO_SESSION"})
		return
	}

	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "El almacenamiento de imágenes no está configurado"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Platillo no encontrado", "code": "NOT_FOUND"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere un archivo de imagen", "code": "VALIDATION_ERROR"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La imagen supera el tamaño máximo de 5 MB", "code": "VALIDATION_ERROR"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo leer la imagen", "code": "VALIDATION_ERROR"})
		return
	}
	defer func() { _ = file.Close() }()

	imageData, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo leer la imagen", "code": "VALIDATION_ERROR"})
		return
	}

	url, err := h.images.UploadDishImage(c.Request.Context(), imageData, fileHeader.Filename)
	if err != nil {
		log.Printf("failed to upload dish image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo subir la imagen"})
		return
	}

	dish, err := h.dishes.SetImageURL(c.Request.Context(), userID, id, url)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dish": dish})
}

func (h *DishHandler) respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "code": "VALIDATION_ERROR"})
	case errors.Is(err, service.ErrDishNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Platillo no encontrado", "code": "NOT_FOUND"})
	default:
		log.Printf("dish request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}
