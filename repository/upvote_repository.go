package repository

import (
	"context"
	"fmt"

	"github.com/openlaunch/open-launch/models"
	"gorm.io/gorm"
)

// UpvoteRepositoryImpl implements UpvoteRepository interface
type UpvoteRepositoryImpl struct {
	*BaseRepository[models.Upvote, models.UpvoteFilter]
}

// NewUpvoteRepository creates a new upvote repository
func NewUpvoteRepository(db *gorm.DB) UpvoteRepository {
	return &UpvoteRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Upvote, models.UpvoteFilter](db),
	}
}

func (r *UpvoteRepositoryImpl) ByFilter(ctx context.Context, filter models.UpvoteFilter, orderBy string, limit, offset int) ([]*models.Upvote, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) }, orderBy, limit, offset)
}

func (r *UpvoteRepositoryImpl) Count(ctx context.Context, filter models.UpvoteFilter) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) })
}

func (r *UpvoteRepositoryImpl) Exists(ctx context.Context, filter models.UpvoteFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByProjects aggregates upvotes per project for the given candidate set
func (r *UpvoteRepositoryImpl) CountByProjects(ctx context.Context, projectIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	var rows []models.UpvoteCount
	err := r.getDB(ctx).
		Model(&models.Upvote{}).
		Select("project_id, COUNT(id) AS count").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count upvotes by project: %w", err)
	}

	for _, row := range rows {
		counts[row.ProjectID] = row.Count
	}
	return counts, nil
}

func (r *UpvoteRepositoryImpl) ByProjectAndUser(ctx context.Context, projectID, userID uint) (*models.Upvote, error) {
	return r.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ? AND user_id = ?", projectID, userID)
	})
}

func (r *UpvoteRepositoryImpl) Delete(ctx context.Context, projectID, userID uint) error {
	return r.write(ctx, func(db *gorm.DB) error {
		if err := db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.Upvote{}).Error; err != nil {
			return fmt.Errorf("failed to delete upvote: %w", err)
		}
		return nil
	})
}

func (r *UpvoteRepositoryImpl) applyFilter(db *gorm.DB, filter models.UpvoteFilter) *gorm.DB {
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	return db
}
