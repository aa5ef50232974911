package login

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lostandfound-admin/lostandfound-admin/internal/activity"
	"github.com/lostandfound-admin/lostandfound-admin/internal/auth"
	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	websess "github.com/lostandfound-admin/lostandfound-admin/internal/web/session"
)

// noOpViews is a minimal Fiber Views engine used for tests. It writes the
// "error" field from the provided fiber.Map (if any) so tests can assert
// error messages rendered by handlers.
type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["error"]; exists && v != nil {
			_, _ = io.WriteString(w, v.(string))
			return nil
		}
	}

	_, _ = io.WriteString(w, name)

	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ActivityLog{}))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		DevMode: true,
		Title:   "Lost & Found Admin",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

func setupLoginApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	websess.Init(sessionmemory.New())

	db := newTestDB(t)
	cfg := newTestConfig()

	app := fiber.New(fiber.Config{Views: noOpViews{}})

	svc := &Service{}
	require.NoError(t, svc.Init(app, cfg, auth.NewService(db, nil), activity.NewService(db)))

	return app, db
}

func postLogin(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestLoginSuccessRedirectsToDashboard(t *testing.T) {
	app, db := setupLoginApp(t)

	require.NoError(t, db.Create(&models.User{
		Active:     true,
		Username:   "jdoe",
		Password:   models.HashPassword("s3cret-pass"),
		Role:       models.RoleUser,
		AuthSource: models.AuthSourceLocal,
	}).Error)

	resp := postLogin(t, app, "jdoe", "s3cret-pass")
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "session=")
}

func TestLoginWrongPassword(t *testing.T) {
	app, db := setupLoginApp(t)

	require.NoError(t, db.Create(&models.User{
		Active:     true,
		Username:   "jdoe",
		Password:   models.HashPassword("s3cret-pass"),
		Role:       models.RoleUser,
		AuthSource: models.AuthSourceLocal,
	}).Error)

	resp := postLogin(t, app, "jdoe", "wrong")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid username or password")
}

func TestLoginInactiveAccount(t *testing.T) {
	app, db := setupLoginApp(t)

	require.NoError(t, db.Create(&models.User{
		Active:     false,
		Username:   "gone",
		Password:   models.HashPassword("s3cret-pass"),
		Role:       models.RoleUser,
		AuthSource: models.AuthSourceLocal,
	}).Error)

	resp := postLogin(t, app, "gone", "s3cret-pass")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "Account is disabled")
}

func TestLoginUnknownUser(t *testing.T) {
	app, _ := setupLoginApp(t)

	resp := postLogin(t, app, "nobody", "whatever")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "Invalid username or password")
}

func TestLoginPageRenders(t *testing.T) {
	app, _ := setupLoginApp(t)

	req := httptest.NewRequest(http.MethodGet, Path, nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
