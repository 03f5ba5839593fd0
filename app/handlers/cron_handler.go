package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/dto"
	businessflow "github.com/openlaunch/open-launch/business_flow"
)

// daily runs touch every launch of two days and send email, so they get more time than a normal request
const dailyTasksTimeout = 10 * time.Minute

// CronHandlerInterface defines the contract for machine-triggered endpoints
type CronHandlerInterface interface {
	RunDailyTasks(c fiber.Ctx) error
	LatestDailyRun(c fiber.Ctx) error
}

// CronHandler exposes the daily lifecycle job over HTTP
type CronHandler struct {
	baseHandler
	dailyTasks businessflow.DailyTasksFlow
	logger     *log.Logger
}

// NewCronHandler creates a new cron handler
func NewCronHandler(dailyTasks businessflow.DailyTasksFlow, logger *log.Logger) *CronHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &CronHandler{
		baseHandler: newBaseHandler(),
		dailyTasks:  dailyTasks,
		logger:      logger,
	}
}

// RunDailyTasks runs the daily lifecycle job
// @Summary Run daily tasks
// @Description Promote today's launches, close and rank yesterday's, delete abandoned payments and email creators
// @Tags Cron
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DailyTasksResponse} "Daily tasks completed"
// @Failure 401 {object} dto.APIResponse "Missing or invalid cron credentials"
// @Failure 409 {object} dto.APIResponse "A run is already in progress"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/cron/daily-tasks [get]
func (h *CronHandler) RunDailyTasks(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContextWithTimeout(c, dailyTasksTimeout)
	defer cancel()

	report, err := h.dailyTasks.RunDailyTasks(businessflow.WithTrigger(ctx, businessflow.TriggerHTTP))
	if err != nil {
		if businessflow.IsDailyTasksAlreadyRunning(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Daily tasks are already running", "DAILY_TASKS_RUNNING", nil)
		}
		h.logger.Printf("daily tasks failed request_id=%s: %v", requestID(c), err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Internal Server Error", "DAILY_TASKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Daily cron tasks completed successfully", dto.DailyTasksResponse{
		Message: "Daily cron tasks completed successfully",
		Details: *report,
	})
}

// LatestDailyRun returns the most recent persisted run
// @Summary Latest daily run
// @Tags Cron
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DailyTaskRunDTO} "Latest run"
// @Failure 404 {object} dto.APIResponse "No run recorded yet"
// @Router /api/cron/daily-tasks/latest [get]
func (h *CronHandler) LatestDailyRun(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	run, err := h.dailyTasks.LatestRun(ctx)
	if err != nil {
		h.logger.Printf("latest daily run lookup failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load latest run", "DAILY_RUN_LOOKUP_FAILED", nil)
	}
	if run == nil {
		return h.ErrorResponse(c, fiber.StatusNotFound, "No daily run recorded yet", "DAILY_RUN_NOT_FOUND", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Latest daily run", businessflow.ToDailyTaskRunDTO(*run))
}
