package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteoryte/banana-oracle/internal/auth"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/service"
)

func TestHandleList(t *testing.T) {
	env := newTestEnv(t)
	env.seedBanana(t, "one")
	env.seedBanana(t, "two")
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/banana", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body service.ListResult
	decodeBody(t, rec, &body)
	assert.Len(t, body.Bananas, 2)
	assert.False(t, body.Demo)
	assert.Equal(t, 2, body.Pagination.Total)
}

func TestHandleList_DemoMode(t *testing.T) {
	catalog := service.NewCatalogService(nil, nil, testLogger())
	h := NewBananaHandler(catalog, nil, testLogger())

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/banana", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body service.ListResult
	decodeBody(t, rec, &body)
	assert.True(t, body.Demo)
	assert.NotEmpty(t, body.Bananas)
}

func TestHandleList_FilterParams(t *testing.T) {
	env := newTestEnv(t)
	rare := env.seedBanana(t, "the rare one")
	rare.Rarity = model.RarityRare
	require.NoError(t, env.catalog.Update(context.Background(), rare))
	env.seedBanana(t, "a common one")
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/banana?rarity=rare", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body service.ListResult
	decodeBody(t, rec, &body)
	require.Len(t, body.Bananas, 1)
	assert.Equal(t, rare.ID, body.Bananas[0].ID)
}

func TestHandleGet(t *testing.T) {
	env := newTestEnv(t)
	banana := env.seedBanana(t, "findable")
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/banana/"+banana.ID, nil)
	req.SetPathValue("id", banana.ID)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body model.Banana
	decodeBody(t, rec, &body)
	assert.Equal(t, banana.ID, body.ID)
}

func TestHandleGet_MissingIDServesDemo(t *testing.T) {
	env := newTestEnv(t)
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/banana/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body model.Banana
	decodeBody(t, rec, &body)
	assert.True(t, body.Demo, "missing id should answer a demo record, not 404")
}

func TestHandleGet_DemoID(t *testing.T) {
	env := newTestEnv(t)
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/banana/demo-1", nil)
	req.SetPathValue("id", "demo-1")
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body model.Banana
	decodeBody(t, rec, &body)
	assert.Equal(t, "demo-1", body.ID)
	assert.True(t, body.Demo)
}

func TestHandleCreate(t *testing.T) {
	env := newTestEnv(t)
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	payload := `{"name":"Created","origin":"API","inventionStory":"Posted into being."}`
	req := httptest.NewRequest(http.MethodPost, "/api/banana", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body model.Banana
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "yellow", body.Color)
}

func TestHandleCreate_Invalid(t *testing.T) {
	env := newTestEnv(t)
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/banana", strings.NewReader(`{"origin":"X"}`))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "validation_error", body.Error)
	assert.Equal(t, "name", body.Field)
}

func TestHandleCreate_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/banana", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDelete_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	banana := env.seedBanana(t, "protected")
	account := env.registerAccount(t, "user@example.com")
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/banana/"+banana.ID, nil)
	req.SetPathValue("id", banana.ID)
	req = req.WithContext(auth.ContextWithAccountID(req.Context(), account.ID))
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Still there.
	_, err := env.catalog.Get(context.Background(), banana.ID)
	assert.NoError(t, err)
}

func TestHandleDelete_Admin(t *testing.T) {
	env := newTestEnv(t)
	banana := env.seedBanana(t, "doomed")
	account := env.registerAccount(t, "admin@example.com")
	account.Role = model.RoleAdmin
	require.NoError(t, env.db.Accounts().Update(context.Background(), account))
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/banana/"+banana.ID, nil)
	req.SetPathValue("id", banana.ID)
	req = req.WithContext(auth.ContextWithAccountID(req.Context(), account.ID))
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := env.catalog.Get(context.Background(), banana.ID)
	assert.Error(t, err)
}

func TestHandleFavorites(t *testing.T) {
	env := newTestEnv(t)
	banana := env.seedBanana(t, "favorite-worthy")
	account := env.registerAccount(t, "fan@example.com")
	h := NewBananaHandler(env.catalog, env.identity, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/banana/"+banana.ID+"/favorite", nil)
	req.SetPathValue("id", banana.ID)
	req = req.WithContext(auth.ContextWithAccountID(req.Context(), account.ID))
	rec := httptest.NewRecorder()
	h.HandleAddFavorite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message   string   `json:"message"`
		Favorites []string `json:"favorites"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, []string{banana.ID}, body.Favorites)

	req = httptest.NewRequest(http.MethodDelete, "/api/banana/"+banana.ID+"/favorite", nil)
	req.SetPathValue("id", banana.ID)
	req = req.WithContext(auth.ContextWithAccountID(req.Context(), account.ID))
	rec = httptest.NewRecorder()
	h.HandleRemoveFavorite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	assert.Empty(t, body.Favorites)
}
