package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.Database{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "catalog.db"),
		},
		Auth: config.Auth{
			Mode:       config.AuthModeJWT,
			JWTSecret:  "entrypoint-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		Tasks:       config.Tasks{Enabled: false},
		Maintenance: config.Maintenance{Enabled: false, Schedule: "30 3 * * *"},
	}
}

func TestBuild_WiresServices(t *testing.T) {
	app, err := Build(testConfig(t), nil)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Books)
	assert.NotNil(t, app.Authors)
	assert.NotNil(t, app.Categories)
	assert.NotNil(t, app.Auth)
	assert.Nil(t, app.Tasks)
	assert.Nil(t, app.Redis)

	checks := app.RouterConfig("test").HealthChecks
	assert.Contains(t, checks, "database")
	assert.NotContains(t, checks, "redis")
	assert.Nil(t, app.RouterConfig("test").TaskQueue)
}

func TestBuild_EndToEnd(t *testing.T) {
	app, err := Build(testConfig(t), nil)
	require.NoError(t, err)
	defer app.Close()
	router := app.Handler("test")

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPost, "/api/v1/user/register", `{"email":"reader@example.com","name":"Reader","password":"correct-horse-battery"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	session, err := app.Auth.Login(context.Background(), "reader@example.com", "correct-horse-battery")
	require.NoError(t, err)

	book := `{"book":{"title":"Dune","language":"en","amount":9.5,"year":"1965-08-01","description":"Spice"},"currency":{"shortName":"USD"}}`
	w = do(http.MethodPost, "/api/v1/books", book, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(http.MethodPost, "/api/v1/books", book, session.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(http.MethodGet, "/api/v1/books/1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dune")

	w = do(http.MethodPost, "/api/v1/books/1/ratings", `{"value":5}`, session.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// No queue configured, so the sweep runs inline.
	w = do(http.MethodPost, "/api/v1/admin/maintenance/prune-links", "", session.Token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuild_WithTaskQueue(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tasks = config.Tasks{Enabled: true, Workers: 1}
	cfg.Maintenance.Enabled = true

	app, err := Build(cfg, nil)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Tasks)
	require.NotNil(t, app.Scheduler)
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg.Database.Path), "catalog-tasks.db"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx))
	assert.True(t, app.Scheduler.IsRunning())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	app.Shutdown(shutdownCtx)
	assert.False(t, app.Scheduler.IsRunning())
}

func TestTaskQueuePath(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.Database.Path), "catalog-tasks.db"), taskQueuePath(cfg))

	cfg.Database = config.Database{Driver: "postgres", DSN: "host=db user=catalog"}
	assert.Equal(t, "catalog-tasks.db", taskQueuePath(cfg))

	cfg.Tasks.DatabasePath = "/var/lib/catalog/queue.db"
	assert.Equal(t, "/var/lib/catalog/queue.db", taskQueuePath(cfg))
}

func TestBuild_WithExplicitTaskQueuePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tasks = config.Tasks{Enabled: true, Workers: 1, DatabasePath: filepath.Join(t.TempDir(), "queue.db")}

	app, err := Build(cfg, nil)
	require.NoError(t, err)
	defer app.Close()

	assert.FileExists(t, cfg.Tasks.DatabasePath)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(cfg.Database.Path), "catalog-tasks.db"))
}

func TestBuild_UnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := Build(cfg, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
