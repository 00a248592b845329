package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/domain/letters"
	"github.com/letterdesk/backend/internal/infrastructure/directory"
	"github.com/letterdesk/backend/internal/infrastructure/recordstore"
)

func newAccessHandler(t *testing.T) *AccessHandler {
	t.Helper()
	ctx := context.Background()

	records := recordstore.NewMemoryStore()
	state := app.NewStateStore()
	collections := app.DefaultCollections()
	loader := app.NewLoader(records, state, collections, zap.NewNop())
	require.NoError(t, loader.Refresh(ctx))

	_, err := records.Create(ctx, collections.Access, map[string]any{
		letters.FieldAccessPrincipal: "admin@example.com",
		letters.FieldAccessRole:      "Admin",
	})
	require.NoError(t, err)
	require.NoError(t, loader.Refresh(ctx))

	return NewAccessHandler(app.NewAccessService(records, state, collections, zap.NewNop()))
}

func accessRouter(h *AccessHandler, principal string) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/v1", withPrincipal(principal))
	g.GET("/access", h.List)
	g.POST("/access", h.Create)
	g.PATCH("/access/:id", h.Update)
	g.DELETE("/access/:id", h.Delete)
	return r
}

func TestAccessHandler_CreateAndList(t *testing.T) {
	h := newAccessHandler(t)
	router := accessRouter(h, "admin@example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/access",
		strings.NewReader(`{"user_principal_name":"bob@example.com","role":"Editor"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"Editor"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/access", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob@example.com")
}

func TestAccessHandler_CreateRejectsUnknownRole(t *testing.T) {
	h := newAccessHandler(t)
	router := accessRouter(h, "admin@example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/access",
		strings.NewReader(`{"user_principal_name":"bob@example.com","role":"Owner"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}

func TestAccessHandler_DuplicatePrincipalConflicts(t *testing.T) {
	h := newAccessHandler(t)
	router := accessRouter(h, "admin@example.com")

	payload := `{"user_principal_name":"admin@example.com","role":"Viewer"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/access", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_ALREADY_EXISTS")
}

func TestAccessHandler_MutationsForbiddenForNonAdmin(t *testing.T) {
	h := newAccessHandler(t)
	router := accessRouter(h, "stranger@example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/access",
		strings.NewReader(`{"user_principal_name":"bob@example.com","role":"Viewer"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDirectoryHandler_Search(t *testing.T) {
	dir := directory.NewStaticDirectory(nil)
	dir.Add(app.DirectoryUser{UserPrincipalName: "alice@example.com", DisplayName: "Alice Example"})
	dir.Add(app.DirectoryUser{UserPrincipalName: "bob@example.com", DisplayName: "Bob Builder"})

	h := NewDirectoryHandler(dir)
	router := gin.New()
	router.GET("/api/v1/directory", withPrincipal("admin@example.com"), h.Search)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/directory?q=ali", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
	assert.NotContains(t, w.Body.String(), "bob@example.com")
}
