package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dishBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Ensalada de Quinoa y Aguacate",
		"description": "Una ensalada refrescante y nutritiva.",
		"quickPrep":   true,
		"prepTime":    15,
		"cookTime":    20,
		"imageUrl":    "https://example.com/quinoa.jpg",
		"steps":       []string{"Cocina la quinoa.", "Corta el aguacate."},
		"calories":    350,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDish(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	dish, ok := response["dish"].(map[string]interface{})
	require.True(t, ok, "response carries no dish object")
	return dish
}

func TestDishRoutesRequireSession(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/dishes"},
		{http.MethodPost, "/api/dishes"},
		{http.MethodGet, "/api/dishes/" + uuid.NewString()},
		{http.MethodPut, "/api/dishes/" + uuid.NewString()},
		{http.MethodDelete, "/api/dishes/" + uuid.NewString()},
	}

	for _, r := range requests {
		w := doJSON(t, router, r.method, r.path, dishBody())
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
		assert.Contains(t, w.Body.String(), "NO_SESSION")
	}
}

func TestCreateDishEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	user, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	w := doJSON(t, router, http.MethodPost, "/api/dishes", dishBody(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	dish := decodeDish(t, w)
	assert.Equal(t, "Ensalada de Quinoa y Aguacate", dish["name"])
	assert.Equal(t, true, dish["quickPrep"])
	assert.Equal(t, float64(350), dish["calories"])
	assert.Equal(t, user.ID.String(), dish["userId"])
	assert.NotContains(t, dish, "embedding")
}

func TestCreateDishValidationEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	body := dishBody()
	body["name"] = "  "

	w := doJSON(t, router, http.MethodPost, "/api/dishes", body, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "El nombre del platillo es obligatorio")
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestListDishesEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	for i := 0; i < 3; i++ {
		body := dishBody()
		body["name"] = fmt.Sprintf("Platillo %d", i+1)
		w := doJSON(t, router, http.MethodPost, "/api/dishes", body, cookie)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/dishes", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Dishes []map[string]interface{} `json:"dishes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Dishes, 3)
	for i, dish := range response.Dishes {
		assert.Equal(t, fmt.Sprintf("Platillo %d", i+1), dish["name"])
	}
}

func TestGetDishEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	w := doJSON(t, router, http.MethodPost, "/api/dishes", dishBody(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeDish(t, w)

	w = doJSON(t, router, http.MethodGet, "/api/dishes/"+created["id"].(string), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	dish := decodeDish(t, w)
	assert.Equal(t, created["id"], dish["id"])
	assert.Equal(t, []interface{}{"Cocina la quinoa.", "Corta el aguacate."}, dish["steps"])
}

func TestGetDishNotFoundEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	w := doJSON(t, router, http.MethodGet, "/api/dishes/"+uuid.NewString(), nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Platillo no encontrado")

	// A malformed id is indistinguishable from a missing dish.
	w = doJSON(t, router, http.MethodGet, "/api/dishes/not-a-uuid", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestUpdateDishEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	w := doJSON(t, router, http.MethodPost, "/api/dishes", dishBody(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeDish(t, w)

	update := dishBody()
	update["name"] = "Tacos de Lentejas"
	update["quickPrep"] = false
	update["calories"] = nil
	update["steps"] = []string{"Cocina las lentejas.", "", "Calienta las tortillas."}

	w = doJSON(t, router, http.MethodPut, "/api/dishes/"+created["id"].(string), update, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	dish := decodeDish(t, w)
	assert.Equal(t, created["id"], dish["id"])
	assert.Equal(t, "Tacos de Lentejas", dish["name"])
	assert.Equal(t, false, dish["quickPrep"])
	assert.Nil(t, dish["calories"])
	assert.Equal(t, []interface{}{"Cocina las lentejas.", "Calienta las tortillas."}, dish["steps"])
}

func TestUpdateDishOfAnotherUserEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, ownerCookie := createTestUserSession(t, auth, "owner@nutriapp.com")
	_, otherCookie := createTestUserSession(t, auth, "other@nutriapp.com")

	w := doJSON(t, router, http.MethodPost, "/api/dishes", dishBody(), ownerCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeDish(t, w)

	w = doJSON(t, router, http.MethodPut, "/api/dishes/"+created["id"].(string), dishBody(), otherCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteDishEndpoint(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	w := doJSON(t, router, http.MethodPost, "/api/dishes", dishBody(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeDish(t, w)
	id := created["id"].(string)

	w = doJSON(t, router, http.MethodDelete, "/api/dishes/"+id, nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// The second delete fails rather than succeeding silently.
	w = doJSON(t, router, http.MethodDelete, "/api/dishes/"+id, nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestUploadDishImageUnconfigured(t *testing.T) {
	router, _, auth := setupTestRouter(t)
	_, cookie := createTestUserSession(t, auth, "test@nutriapp.com")

	w := doJSON(t, router, http.MethodPost, "/api/dishes", dishBody(), cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeDish(t, w)

	w = doJSON(t, router, http.MethodPost, "/api/dishes/"+created["id"].(string)+"/image", nil, cookie)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
