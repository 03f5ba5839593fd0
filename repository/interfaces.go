// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openlaunch/open-launch/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ProjectRepository defines operations for projects, including the
// conditional bulk writes driven by the daily lifecycle job
type ProjectRepository interface {
	Repository[models.Project, models.ProjectFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	BySlug(ctx context.Context, slug string) (*models.Project, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	// TransitionStatus moves every project in status from whose scheduled
	// launch date falls in [start, end) to status to, stamping updated_at.
	TransitionStatus(ctx context.Context, from, to models.LaunchStatus, start, end, now time.Time) ([]models.ProjectSummary, error)
	// SetDailyRanking writes the rank of a single project.
	SetDailyRanking(ctx context.Context, projectID uint, rank int, now time.Time) error
	// DeleteAbandonedPayments hard-deletes payment_pending projects not touched since deadline (inclusive).
	DeleteAbandonedPayments(ctx context.Context, deadline time.Time) ([]models.ProjectSummary, error)
	// ListLaunching returns projects in status whose scheduled launch date falls in [start, end).
	ListLaunching(ctx context.Context, status models.LaunchStatus, start, end time.Time) ([]*models.Project, error)
	// ListRankedWinners returns launched projects ranked 1..maxRank whose launch date falls in [start, end).
	ListRankedWinners(ctx context.Context, start, end time.Time, maxRank int) ([]*models.Project, error)
}

// UpvoteRepository defines operations for upvotes
type UpvoteRepository interface {
	Repository[models.Upvote, models.UpvoteFilter]
	// CountByProjects returns the upvote count per project, restricted to projectIDs.
	// Projects without upvotes are absent from the result.
	CountByProjects(ctx context.Context, projectIDs []uint) (map[uint]int64, error)
	ByProjectAndUser(ctx context.Context, projectID, userID uint) (*models.Upvote, error)
	Delete(ctx context.Context, projectID, userID uint) error
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	MarkEmailVerified(ctx context.Context, userID uint, verifiedAt time.Time) error
	TouchLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// CommentRepository defines operations for comments
type CommentRepository interface {
	Repository[models.Comment, models.CommentFilter]
	ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]*models.Comment, error)
}

// DailyTaskRunRepository defines operations for persisted daily job runs
type DailyTaskRunRepository interface {
	Repository[models.DailyTaskRun, models.DailyTaskRunFilter]
	Update(ctx context.Context, run *models.DailyTaskRun) error
	Latest(ctx context.Context) (*models.DailyTaskRun, error)
}
