package handler

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"exchange-diary/internal/config"
	"exchange-diary/internal/db"
)

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn, err := db.Open(config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "health.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	engine := gin.New()
	(&HealthHandler{DB: conn}).Register(engine)

	w := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")

	w = doJSON(t, engine, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ready")
}

func TestReadyz_WithoutDB(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	(&HealthHandler{}).Register(engine)

	w := doJSON(t, engine, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "db_missing")
}

func TestReadyz_ClosedDB(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn, err := db.Open(config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "health.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close(conn))

	engine := gin.New()
	(&HealthHandler{DB: conn}).Register(engine)

	w := doJSON(t, engine, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "db_unreachable")
}
