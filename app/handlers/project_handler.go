package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/app/middleware"
	businessflow "github.com/openlaunch/open-launch/business_flow"
)

// ProjectHandlerInterface defines the contract for project handlers
type ProjectHandlerInterface interface {
	SubmitProject(c fiber.Ctx) error
	GetProject(c fiber.Ctx) error
	ListLaunches(c fiber.Ctx) error
	ToggleUpvote(c fiber.Ctx) error
	AddComment(c fiber.Ctx) error
	ListComments(c fiber.Ctx) error
}

// ProjectHandler serves the public directory and its interactions
type ProjectHandler struct {
	baseHandler
	projectFlow businessflow.ProjectFlow
	commentFlow businessflow.CommentFlow
}

func NewProjectHandler(projectFlow businessflow.ProjectFlow, commentFlow businessflow.CommentFlow) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(),
		projectFlow: projectFlow,
		commentFlow: commentFlow,
	}
}

func (h *ProjectHandler) authRequired(c fiber.Ctx) error {
	return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
}

// SubmitProject adds a project to the launch queue
// @Summary Submit project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitProjectRequest true "Project data"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitProjectResponse} "Project submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/projects [post]
func (h *ProjectHandler) SubmitProject(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.authRequired(c)
	}

	var req dto.SubmitProjectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.projectFlow.SubmitProject(ctx, userID, &req)
	if err != nil {
		switch {
		case businessflow.IsInvalidLaunchType(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid launch type", "INVALID_LAUNCH_TYPE", nil)
		case businessflow.IsInvalidDate(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid launch date", "INVALID_DATE", nil)
		case businessflow.IsLaunchDateInPast(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Launch date must be today or later", "LAUNCH_DATE_IN_PAST", nil)
		}
		log.Println("Project submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Project submission failed", "PROJECT_SUBMIT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Project submitted", result)
}

// GetProject returns the public view of a project
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} dto.APIResponse{data=dto.ProjectDTO} "Project"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /api/v1/projects/{slug} [get]
func (h *ProjectHandler) GetProject(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.projectFlow.GetProject(ctx, c.Params("slug"))
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", "PROJECT_NOT_FOUND", nil)
		}
		log.Println("Project lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Project lookup failed", "PROJECT_LOOKUP_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Project retrieved", result)
}

// ListLaunches lists the projects of a launch day
// @Summary List launches
// @Tags Projects
// @Produce json
// @Param date query string false "Launch day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.APIResponse{data=dto.ListLaunchesResponse} "Launches"
// @Router /api/v1/launches [get]
func (h *ProjectHandler) ListLaunches(c fiber.Ctx) error {
	var req dto.ListLaunchesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.projectFlow.ListLaunches(ctx, &req)
	if err != nil {
		if businessflow.IsInvalidDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date", "INVALID_DATE", nil)
		}
		log.Println("Listing launches failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list launches", "LAUNCHES_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Launches retrieved", result)
}

// ToggleUpvote adds or removes the caller's upvote
// @Summary Toggle upvote
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Project slug"
// @Success 200 {object} dto.APIResponse{data=dto.UpvoteResponse} "Upvote toggled"
// @Failure 409 {object} dto.APIResponse "Project is not launching today"
// @Router /api/v1/projects/{slug}/upvote [post]
func (h *ProjectHandler) ToggleUpvote(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.authRequired(c)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.projectFlow.ToggleUpvote(ctx, userID, c.Params("slug"))
	if err != nil {
		switch {
		case businessflow.IsProjectNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", "PROJECT_NOT_FOUND", nil)
		case businessflow.IsProjectNotOngoing(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Only projects launching today accept upvotes", "PROJECT_NOT_ONGOING", nil)
		}
		log.Println("Upvote failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Upvote failed", "UPVOTE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Upvote updated", result)
}

// AddComment posts a comment on a project
// @Summary Add comment
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Project slug"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentDTO} "Comment created"
// @Router /api/v1/projects/{slug}/comments [post]
func (h *ProjectHandler) AddComment(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.authRequired(c)
	}

	var req dto.CreateCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.commentFlow.AddComment(ctx, userID, c.Params("slug"), &req)
	if err != nil {
		switch {
		case businessflow.IsCommentBodyInvalid(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_COMMENT", nil)
		case businessflow.IsProjectNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", "PROJECT_NOT_FOUND", nil)
		case businessflow.IsUserNotFound(err):
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", "USER_NOT_FOUND", nil)
		}
		log.Println("Adding comment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add comment", "COMMENT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Comment added", result)
}

// ListComments returns a page of a project's comments
// @Summary List comments
// @Tags Comments
// @Produce json
// @Param slug path string true "Project slug"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListCommentsResponse} "Comments"
// @Router /api/v1/projects/{slug}/comments [get]
func (h *ProjectHandler) ListComments(c fiber.Ctx) error {
	var req dto.ListCommentsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.commentFlow.ListComments(ctx, c.Params("slug"), &req)
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", "PROJECT_NOT_FOUND", nil)
		}
		log.Println("Listing comments failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list comments", "COMMENT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Comments retrieved", result)
}
