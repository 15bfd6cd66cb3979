package e2e

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriapp/backend/internal/models"
	"github.com/nutriapp/backend/internal/types"
)

func seedUser(t *testing.T, h *Harness, email string) {
	t.Helper()
	_, err := h.Auth.Register(context.Background(), &types.RegisterRequest{
		FirstName:   "Test",
		LastName:    "User",
		Email:       email,
		Nationality: "Chile",
		Phone:       "123456789",
		Password:    "nutriapp123",
	})
	require.NoError(t, err)
}

func login(t *testing.T, b *Browser, email, password string) *DishesPage {
	t.Helper()
	dishes, errMsg := OpenLogin(b).Submit(email, password)
	require.Empty(t, errMsg)
	require.NotNil(t, dishes)
	return dishes
}

func quinoaForm() DishForm {
	calories := 350
	return DishForm{
		Name:        "Ensalada de Quinoa y Aguacate",
		Description: "Una ensalada refrescante y nutritiva.",
		QuickPrep:   true,
		PrepTime:    15,
		CookTime:    20,
		Steps:       []string{"Cocina la quinoa.", "Corta el aguacate.", "Mezcla y sirve."},
		Calories:    &calories,
	}
}

func TestRegisterThenLogin(t *testing.T) {
	h := NewHarness(t)
	b := h.NewBrowser(t)

	loginPage, errMsg := OpenRegister(b).Submit(
		"Test", "User", "nuevo@nutriapp.com", "Chile", "123456789", "nutriapp123")
	require.Empty(t, errMsg)
	require.NotNil(t, loginPage)

	dishes := login(t, b, "nuevo@nutriapp.com", "nutriapp123")
	assert.Equal(t, "/dishes", dishes.Path)
	assert.Equal(t, "Sugerencias de Platillos", dishes.Heading())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	_, errMsg := OpenRegister(b).Submit(
		"Test", "User", "test@nutriapp.com", "Chile", "123456789", "nutriapp123")
	assert.Equal(t, "El correo ya está registrado", errMsg)

	var count int64
	require.NoError(t, h.DB.Model(&models.User{}).Where("email = ?", "test@nutriapp.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoginWithSeededCredentials(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	dishes := login(t, b, "test@nutriapp.com", "nutriapp123")
	assert.Equal(t, "Sugerencias de Platillos", dishes.Heading())
	assert.True(t, dishes.Contains("+ Agregar Platillo"))
}

func TestLoginWithWrongPassword(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	dishes, errMsg := OpenLogin(b).Submit("test@nutriapp.com", "wrong-password")
	assert.Nil(t, dishes)
	assert.Equal(t, "Invalid credentials", errMsg)

	// The session never opened; protected pages still bounce to login.
	assert.Equal(t, "/login", b.Visit("/dishes").Path)
}

func TestProtectedPagesRedirectWithoutSession(t *testing.T) {
	h := NewHarness(t)
	b := h.NewBrowser(t)

	for _, path := range []string{
		"/dishes",
		"/dishes/new",
		"/dishes/0d9c4f3e-2b1a-4c5d-8e6f-7a8b9c0d1e2f",
		"/dishes/0d9c4f3e-2b1a-4c5d-8e6f-7a8b9c0d1e2f/view",
	} {
		page := b.Visit(path)
		assert.Equal(t, "/login", page.Path, "visiting %s without a session", path)
	}
}

func TestHomeRedirects(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	assert.Equal(t, "/login", b.Visit("/").Path)

	login(t, b, "test@nutriapp.com", "nutriapp123")
	assert.Equal(t, "/dishes", b.Visit("/").Path)
}

func TestDishLifecycle(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	dishes := login(t, b, "test@nutriapp.com", "nutriapp123")
	assert.Empty(t, dishes.DishCards())

	form := quinoaForm()
	form.Steps = []string{"Cocina la quinoa.", "", "  ", "Corta el aguacate.", "Mezcla y sirve."}
	dishes, errMsg := dishes.AddDish(form)
	require.Empty(t, errMsg)
	require.Equal(t, []string{"Ensalada de Quinoa y Aguacate"}, dishes.DishCards())

	var stored models.Dish
	require.NoError(t, h.DB.First(&stored, "name = ?", form.Name).Error)
	id := stored.ID.String()

	// Blank steps were dropped, the rest kept their order.
	view := dishes.ViewDish(id)
	assert.Equal(t, []string{"Cocina la quinoa.", "Corta el aguacate.", "Mezcla y sirve."}, view.Steps())
	assert.True(t, view.Contains("350 kcal"))
	assert.True(t, view.Contains("Rápido"))

	update := quinoaForm()
	update.Name = "Tacos de Lentejas"
	update.QuickPrep = false
	update.Calories = nil
	update.Steps = []string{"Cocina las lentejas.", "Calienta las tortillas."}
	dishes, errMsg = dishes.EditDish(id, update)
	require.Empty(t, errMsg)
	assert.Equal(t, []string{"Tacos de Lentejas"}, dishes.DishCards())

	view = dishes.ViewDish(id)
	assert.Equal(t, []string{"Cocina las lentejas.", "Calienta las tortillas."}, view.Steps())
	assert.False(t, view.Contains("Rápido"))

	dishes, status := dishes.DeleteDish(id)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, dishes.DishCards())

	// Deleting again reports the dish as gone.
	_, status = dishes.DeleteDish(id)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEditDishNameOnly(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	dishes := login(t, b, "test@nutriapp.com", "nutriapp123")
	dishes, errMsg := dishes.AddDish(quinoaForm())
	require.Empty(t, errMsg)

	var before models.Dish
	require.NoError(t, h.DB.First(&before, "name = ?", "Ensalada de Quinoa y Aguacate").Error)

	// Resubmitting the form with only the name changed leaves everything
	// else as it was.
	update := quinoaForm()
	update.Name = "Ensalada de Quinoa"
	_, errMsg = dishes.EditDish(before.ID.String(), update)
	require.Empty(t, errMsg)

	var after models.Dish
	require.NoError(t, h.DB.First(&after, "id = ?", before.ID).Error)
	assert.Equal(t, "Ensalada de Quinoa", after.Name)
	assert.Equal(t, before.Description, after.Description)
	assert.Equal(t, before.QuickPrep, after.QuickPrep)
	assert.Equal(t, before.PrepTime, after.PrepTime)
	assert.Equal(t, before.CookTime, after.CookTime)
	assert.Equal(t, before.Steps, after.Steps)
	assert.Equal(t, before.Calories, after.Calories)
	assert.Equal(t, before.UserID, after.UserID)
}

func TestDishFormValidationMessage(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	dishes := login(t, b, "test@nutriapp.com", "nutriapp123")

	form := quinoaForm()
	form.Name = "   "
	_, errMsg := dishes.AddDish(form)
	assert.Equal(t, "El nombre del platillo es obligatorio", errMsg)
}

func TestDishesOrderedByCreation(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	dishes := login(t, b, "test@nutriapp.com", "nutriapp123")

	for _, name := range []string{"Sopa de Verduras", "Bowl de Avena", "Curry de Garbanzos"} {
		form := quinoaForm()
		form.Name = name
		var errMsg string
		dishes, errMsg = dishes.AddDish(form)
		require.Empty(t, errMsg)
	}

	assert.Equal(t, []string{"Sopa de Verduras", "Bowl de Avena", "Curry de Garbanzos"}, dishes.DishCards())
}

func TestLogoutClosesSession(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")
	b := h.NewBrowser(t)

	dishes := login(t, b, "test@nutriapp.com", "nutriapp123")

	after := dishes.Logout()
	assert.Equal(t, "/login", after.Path)

	assert.Equal(t, "/login", b.Visit("/dishes").Path)
}

func TestSessionIsSharedAcrossTabsNotBrowsers(t *testing.T) {
	h := NewHarness(t)
	seedUser(t, h, "test@nutriapp.com")

	first := h.NewBrowser(t)
	login(t, first, "test@nutriapp.com", "nutriapp123")
	assert.Equal(t, "/dishes", first.Visit("/dishes").Path)

	// A browser without the cookie stays locked out.
	second := h.NewBrowser(t)
	assert.Equal(t, "/login", second.Visit("/dishes").Path)
}
