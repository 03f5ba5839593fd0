package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(t *testing.T) (*fiber.App, services.TokenService) {
	t.Helper()
	tokens, err := services.NewTokenService(time.Minute, time.Hour, "open-launch", "open-launch-api", false, "", "", "middleware-test-secret-0123456789abcdef")
	require.NoError(t, err)

	auth := NewAuthMiddleware(tokens)
	app := fiber.New()
	whoami := func(c fiber.Ctx) error {
		id, ok := GetUserIDFromContext(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(strconv.FormatUint(uint64(id), 10))
	}
	app.Get("/private", auth.Authenticate(), whoami)
	app.Get("/public", auth.OptionalAuth(), whoami)
	return app, tokens
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthenticate(t *testing.T) {
	app, tokens := newAuthApp(t)
	access, refresh, err := tokens.GenerateTokens(42)
	require.NoError(t, err)

	status, body := doGet(t, app, "/private", "Bearer "+access)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "42", body)

	status, body = doGet(t, app, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_AUTHORIZATION_HEADER")

	status, body = doGet(t, app, "/private", "Token "+access)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_AUTHORIZATION_FORMAT")

	status, body = doGet(t, app, "/private", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "TOKEN_INVALID")

	status, _ = doGet(t, app, "/private", "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOptionalAuth(t *testing.T) {
	app, tokens := newAuthApp(t)
	access, _, err := tokens.GenerateTokens(7)
	require.NoError(t, err)

	_, body := doGet(t, app, "/public", "")
	assert.Equal(t, "anonymous", body)

	_, body = doGet(t, app, "/public", "Bearer garbage")
	assert.Equal(t, "anonymous", body)

	_, body = doGet(t, app, "/public", "Bearer "+access)
	assert.Equal(t, "7", body)
}
