package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/service"
	"github.com/ericogr/dnd-combat-sim/internal/storage"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat, err := catalog.Default()
	require.NoError(t, err)
	db, err := storage.OpenAndMigrate(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	runner := service.NewRunner(cat, storage.NewSQLiteRepository(db), service.DefaultSettings(), nil)

	router := gin.New()
	NewSimulationHandler(runner).Register(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHealthAndVersion(t *testing.T) {
	router := newRouter(t)
	w, body := do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, body = do(t, router, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev", body["version"])
}

func TestCatalogAndDifficulty(t *testing.T) {
	router := newRouter(t)
	w, body := do(t, router, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["actions"])
	assert.NotEmpty(t, body["monsters"])

	w, body = do(t, router, http.MethodGet, "/api/difficulty?party=adventurers&encounter=dragon-lair", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deadly", body["rating"])

	w, _ = do(t, router, http.MethodGet, "/api/difficulty?party=adventurers", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, router, http.MethodGet, "/api/difficulty?party=adventurers&encounter=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimulationLifecycle(t *testing.T) {
	router := newRouter(t)
	w, body := do(t, router, http.MethodPost, "/api/simulations", map[string]interface{}{
		"party": "adventurers", "encounter": "goblin-ambush", "seed": 11,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	result := body["result"].(map[string]interface{})
	assert.NotEmpty(t, result["log"])

	w, body = do(t, router, http.MethodGet, "/api/simulations/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, result["outcome"], body["outcome"])
	assert.Contains(t, body, "created_at")
	assert.NotContains(t, body, "ID")

	req := httptest.NewRequest(http.MethodGet, "/api/simulations?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	w, _ = do(t, router, http.MethodGet, "/api/simulations/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, router, http.MethodGet, "/api/simulations?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulationBadRequests(t *testing.T) {
	router := newRouter(t)
	w, body := do(t, router, http.MethodPost, "/api/simulations", map[string]interface{}{"party": "adventurers", "encounter": "nowhere"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "nowhere")

	req := httptest.NewRequest(http.MethodPost, "/api/simulations", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchLifecycle(t *testing.T) {
	router := newRouter(t)
	w, body := do(t, router, http.MethodPost, "/api/batches", map[string]interface{}{
		"party": "vanguard", "encounter": "wolf-pack", "seed": 5, "runs": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	assert.EqualValues(t, 4, body["runs"])
	assert.Len(t, body["simulations"], 4)

	w, body = do(t, router, http.MethodGet, "/api/batches/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["simulations"], 4)

	w, _ = do(t, router, http.MethodPost, "/api/batches", map[string]interface{}{
		"party": "vanguard", "encounter": "wolf-pack", "runs": 10000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, router, http.MethodGet, "/api/batches/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
