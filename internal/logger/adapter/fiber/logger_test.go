package fiber_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostandfound-admin/lostandfound-admin/internal/logger"
	fiberlogger "github.com/lostandfound-admin/lostandfound-admin/internal/logger/adapter/fiber"
)

func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config: logger.Log{
			AppName:     "test",
			ServiceName: "test",
		},
	}))

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Performance"))
}

func TestAccessLogMiddlewareNextSkips(t *testing.T) {
	app := fiber.New()

	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(_ *fiber.Ctx) bool { return true },
	}))

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Performance"))
}
