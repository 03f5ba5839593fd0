package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/app/handlers"
	"github.com/openlaunch/open-launch/app/middleware"
	"github.com/openlaunch/open-launch/app/services"
	"github.com/openlaunch/open-launch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDailyTasks struct{ runs int }

func (s *stubDailyTasks) RunDailyTasks(context.Context) (*dto.DailyTasksReport, error) {
	s.runs++
	return &dto.DailyTasksReport{}, nil
}

func (s *stubDailyTasks) LatestRun(context.Context) (*models.DailyTaskRun, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, checks map[string]HealthCheck) (*fiber.App, *stubDailyTasks) {
	t.Helper()
	tokens, err := services.NewTokenService(time.Minute, time.Hour, "open-launch", "open-launch-api", false, "", "", "router-test-secret-0123456789abcdef")
	require.NoError(t, err)

	daily := &stubDailyTasks{}
	r := NewFiberRouter(Handlers{
		Auth:    handlers.NewAuthHandler(nil),
		Project: handlers.NewProjectHandler(nil, nil),
		Payment: handlers.NewPaymentHandler(nil),
		Cron:    handlers.NewCronHandler(daily, nil),
		Admin:   handlers.NewAdminHandler(nil),
	}, middleware.NewAuthMiddleware(tokens), Options{
		CronAuth:     middleware.CronAuthConfig{Secret: "cron-secret"},
		HealthChecks: checks,
	})
	r.SetupRoutes()
	return r.GetApp(), daily
}

func request(t *testing.T, app *fiber.App, method, target string, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	app, _ := newTestRouter(t, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	status, body := request(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"database":"up"`)

	app, _ = newTestRouter(t, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"cache":    func(context.Context) error { return errors.New("connection refused") },
	})
	status, body = request(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "connection refused")
}

func TestCronRoutesRequireCredentials(t *testing.T) {
	app, daily := newTestRouter(t, nil)

	status, _ := request(t, app, http.MethodGet, "/api/cron/daily-tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 0, daily.runs)

	status, _ = request(t, app, http.MethodPost, "/api/cron/daily-tasks", map[string]string{"X-Vercel-Cron-Secret": "cron-secret"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, daily.runs)

	status, _ = request(t, app, http.MethodGet, "/api/v1/admin/rankings/export?date=2025-06-01", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProtectedRoutesAndNotFound(t *testing.T) {
	app, _ := newTestRouter(t, nil)

	status, body := request(t, app, http.MethodPost, "/api/v1/projects/rocket/upvote", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_AUTHORIZATION_HEADER")

	status, body = request(t, app, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "NOT_FOUND")
}
