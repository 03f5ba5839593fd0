package businessflow

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/repository"
	"github.com/openlaunch/open-launch/utils"
)

type CommentFlow interface {
	AddComment(ctx context.Context, userID uint, slug string, req *dto.CreateCommentRequest) (*dto.CommentDTO, error)
	ListComments(ctx context.Context, slug string, req *dto.ListCommentsRequest) (*dto.ListCommentsResponse, error)
}

type CommentFlowImpl struct {
	projectRepo repository.ProjectRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

func NewCommentFlow(projectRepo repository.ProjectRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository) CommentFlow {
	return &CommentFlowImpl{
		projectRepo: projectRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

func (cf *CommentFlowImpl) AddComment(ctx context.Context, userID uint, slug string, req *dto.CreateCommentRequest) (*dto.CommentDTO, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrCommentBodyRequired
	}
	if utf8.RuneCountInString(body) > utils.MaxCommentLength {
		return nil, ErrCommentBodyTooLong
	}

	project, err := cf.projectRepo.BySlug(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("COMMENT_FAILED", "Failed to load project", err)
	}
	if project == nil || project.LaunchStatus == models.LaunchStatusPaymentPending {
		return nil, ErrProjectNotFound
	}

	user, err := cf.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("COMMENT_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	comment := &models.Comment{ProjectID: project.ID, UserID: userID, Body: body, CreatedAt: utils.UTCNow()}
	if err := cf.commentRepo.Save(ctx, comment); err != nil {
		return nil, NewBusinessError("COMMENT_FAILED", "Failed to save comment", err)
	}
	comment.User = user

	out := ToCommentDTO(*comment)
	return &out, nil
}

func (cf *CommentFlowImpl) ListComments(ctx context.Context, slug string, req *dto.ListCommentsRequest) (*dto.ListCommentsResponse, error) {
	page, pageSize := 1, 20
	if req != nil {
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize > 0 {
			pageSize = min(req.PageSize, 100)
		}
	}

	project, err := cf.projectRepo.BySlug(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("COMMENT_LIST_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	comments, err := cf.commentRepo.ListByProject(ctx, project.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("COMMENT_LIST_FAILED", "Failed to list comments", err)
	}
	total, err := cf.commentRepo.Count(ctx, models.CommentFilter{ProjectID: &project.ID})
	if err != nil {
		return nil, NewBusinessError("COMMENT_LIST_FAILED", "Failed to count comments", err)
	}

	out := make([]dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, ToCommentDTO(*c))
	}
	return &dto.ListCommentsResponse{Comments: out, Page: page, PageSize: pageSize, Total: total}, nil
}
