package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/dto"
	businessflow "github.com/openlaunch/open-launch/business_flow"
	"github.com/openlaunch/open-launch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

type fakeDailyTasks struct {
	report *dto.DailyTasksReport
	err    error
	run    *models.DailyTaskRun

	trigger string
}

func (f *fakeDailyTasks) RunDailyTasks(ctx context.Context) (*dto.DailyTasksReport, error) {
	f.trigger = businessflow.TriggerFrom(ctx)
	return f.report, f.err
}

func (f *fakeDailyTasks) LatestRun(context.Context) (*models.DailyTaskRun, error) {
	return f.run, nil
}

func TestCronHandler_RunDailyTasks(t *testing.T) {
	report := &dto.DailyTasksReport{
		LaunchUpdates: dto.LaunchUpdatesReport{ScheduledToOngoing: 2, OngoingToLaunched: 3, ProjectsRanked: 3, AbandonedPaymentsDeleted: 1},
		EmailNotifications: dto.EmailNotificationsReport{
			ReminderEmails: dto.ReminderEmailsReport{ProjectsFound: 2, Sent: 1, Failed: 1},
			WinnerEmails:   dto.WinnerEmailsReport{WinnersFound: 3, Sent: 3},
		},
	}

	t.Run("success", func(t *testing.T) {
		app := fiber.New()
		flow := &fakeDailyTasks{report: report}
		app.Get("/cron", NewCronHandler(flow, nil).RunDailyTasks)

		status, env := do(t, app, http.MethodGet, "/cron", "")
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, env.Success)
		assert.Equal(t, businessflow.TriggerHTTP, flow.trigger)

		var data map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "Daily cron tasks completed successfully", data["message"])
		details := data["details"].(map[string]any)
		updates := details["launchUpdates"].(map[string]any)
		assert.EqualValues(t, 2, updates["scheduledToOngoing"])
		assert.EqualValues(t, 1, updates["abandonedPaymentsDeleted"])
		reminders := details["emailNotifications"].(map[string]any)["reminderEmails"].(map[string]any)
		assert.EqualValues(t, 2, reminders["projectsFound"])
		assert.EqualValues(t, 1, reminders["failed"])
	})

	t.Run("failure hides counts", func(t *testing.T) {
		app := fiber.New()
		app.Get("/cron", NewCronHandler(&fakeDailyTasks{err: errors.New("db down")}, nil).RunDailyTasks)

		status, env := do(t, app, http.MethodGet, "/cron", "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.False(t, env.Success)
		assert.Equal(t, "Internal Server Error", env.Message)
		assert.Empty(t, env.Data)
	})

	t.Run("overlapping run", func(t *testing.T) {
		app := fiber.New()
		app.Get("/cron", NewCronHandler(&fakeDailyTasks{err: businessflow.ErrDailyTasksAlreadyRunning}, nil).RunDailyTasks)

		status, env := do(t, app, http.MethodGet, "/cron", "")
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "DAILY_TASKS_RUNNING", env.Error.Code)
	})
}

func TestCronHandler_LatestDailyRun(t *testing.T) {
	app := fiber.New()
	flow := &fakeDailyTasks{}
	app.Get("/latest", NewCronHandler(flow, nil).LatestDailyRun)

	status, _ := do(t, app, http.MethodGet, "/latest", "")
	assert.Equal(t, http.StatusNotFound, status)

	flow.run = &models.DailyTaskRun{
		ID:        4,
		Trigger:   businessflow.TriggerScheduler,
		Status:    models.DailyTaskRunStatusSucceeded,
		LaunchDay: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartedAt: time.Date(2025, 6, 2, 0, 5, 0, 0, time.UTC),
	}
	status, env := do(t, app, http.MethodGet, "/latest", "")
	assert.Equal(t, http.StatusOK, status)
	var run dto.DailyTaskRunDTO
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, uint(4), run.ID)
	assert.Equal(t, "2025-06-02", run.LaunchDay)
	assert.Equal(t, "scheduler", run.Trigger)
}
