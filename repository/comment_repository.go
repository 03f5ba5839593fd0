package repository

import (
	"context"

	"github.com/openlaunch/open-launch/models"
	"gorm.io/gorm"
)

// CommentRepositoryImpl implements CommentRepository interface
type CommentRepositoryImpl struct {
	*BaseRepository[models.Comment, models.CommentFilter]
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Comment, models.CommentFilter](db),
	}
}

func (r *CommentRepositoryImpl) ByFilter(ctx context.Context, filter models.CommentFilter, orderBy string, limit, offset int) ([]*models.Comment, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) }, orderBy, limit, offset)
}

func (r *CommentRepositoryImpl) Count(ctx context.Context, filter models.CommentFilter) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) })
}

func (r *CommentRepositoryImpl) Exists(ctx context.Context, filter models.CommentFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByProject returns a project's comments oldest first, with authors preloaded
func (r *CommentRepositoryImpl) ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]*models.Comment, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Preload("User").Where("project_id = ?", projectID)
	}, "created_at ASC, id ASC", limit, offset)
}

func (r *CommentRepositoryImpl) applyFilter(db *gorm.DB, filter models.CommentFilter) *gorm.DB {
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	return db
}
