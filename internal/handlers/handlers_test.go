package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicore/internal/apperr"
)

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/health", Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestInfo(t *testing.T) {
	app := fiber.New()
	app.Get("/", Info)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetUserID(t *testing.T) {
	app := fiber.New()
	var captured uuid.UUID
	var captureErr error
	app.Get("/whoami", func(c *fiber.Ctx) error {
		captured, captureErr = getUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
		require.NoError(t, err)
		_, _ = io.ReadAll(resp.Body)
		assert.Error(t, captureErr)
	})

	t.Run("valid header resolves to the user id", func(t *testing.T) {
		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-Id", id.String())
		resp, err := app.Test(req)
		require.NoError(t, err)
		_, _ = io.ReadAll(resp.Body)
		require.NoError(t, captureErr)
		assert.Equal(t, id, captured)
	})

	t.Run("malformed header is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-Id", "not-a-uuid")
		resp, err := app.Test(req)
		require.NoError(t, err)
		_, _ = io.ReadAll(resp.Body)
		assert.Error(t, captureErr)
	})
}

func TestRespondError(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, apperr.New(apperr.InsufficientFunds, "not enough energy"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
