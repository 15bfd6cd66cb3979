// Package web serves the server-rendered pages behind the JSON API. The
// pages collect the dish and credential fields and submit them to /api/*;
// protected pages are rendered only for requests carrying a valid session.
package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutriapp/backend/internal/middleware"
	"github.com/nutriapp/backend/internal/models"
	"github.com/nutriapp/backend/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for the router.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// PageHandler renders the HTML pages
type PageHandler struct {
	dishes *service.DishService
	auth   *service.AuthService
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(dishes *service.DishService, auth *service.AuthService) *PageHandler {
	return &PageHandler{dishes: dishes, auth: auth}
}

// RegisterRoutes registers the page routes. The guard redirects requests
// without a valid session to /login.
func (h *PageHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Home)
	router.GET("/login", h.LoginPage)
	router.GET("/register", h.RegisterPage)

	guarded := router.Group("/dishes")
	guarded.Use(middleware.PageGuard(h.auth))
	{
		guarded.GET("", h.DishesPage)
		// "new" shares the :id position; gin cannot register both a static
		// and a parameterized segment here.
		guarded.GET("/:id", h.DishFormPage)
		guarded.GET("/:id/view", h.DishViewPage)
	}
}

// Home redirects to the dishes list or login depending on the session
func (h *PageHandler) Home(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookie)
	if err == nil {
		if _, err := h.auth.ValidateSession(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusFound, "/dishes")
			return
		}
	}
	c.Redirect(http.StatusFound, "/login")
}

// LoginPage renders the login form
func (h *PageHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// RegisterPage renders the registration form
func (h *PageHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// DishesPage renders the dish list
func (h *PageHandler) DishesPage(c *gin.Context) {
	dishes, err := h.dishes.ListDishes(c.Request.Context(), c.Query("q"))
	if err != nil {
		log.Printf("failed to render dish list: %v", err)
		c.HTML(http.StatusInternalServerError, "dishes.html", gin.H{"Error": "No se pudieron cargar los platillos"})
		return
	}

	c.HTML(http.StatusOK, "dishes.html", gin.H{"Dishes": dishes})
}

// DishFormPage renders the add form for /dishes/new and the edit form for
// /dishes/:id.
func (h *PageHandler) DishFormPage(c *gin.Context) {
	param := c.Param("id")
	if param == "new" {
		c.HTML(http.StatusOK, "dish_form.html", gin.H{"IsEdit": false})
		return
	}

	dish, ok := h.lookupDish(c, param)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "dish_form.html", gin.H{"IsEdit": true, "Dish": dish})
}

// DishViewPage renders the read-only dish detail
func (h *PageHandler) DishViewPage(c *gin.Context) {
	dish, ok := h.lookupDish(c, c.Param("id"))
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "dish_view.html", gin.H{"Dish": dish, "TotalTime": dish.PrepTime + dish.CookTime})
}

func (h *PageHandler) lookupDish(c *gin.Context, param string) (*models.Dish, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", nil)
		return nil, false
	}

	dish, err := h.dishes.GetDish(c.Request.Context(), id)
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", nil)
		return nil, false
	}
	return dish, true
}
