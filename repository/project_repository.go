package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openlaunch/open-launch/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepositoryImpl implements ProjectRepository interface
type ProjectRepositoryImpl struct {
	*BaseRepository[models.Project, models.ProjectFilter]
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &ProjectRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Project, models.ProjectFilter](db),
	}
}

var summaryColumns = clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "name"}}}

// ByFilter retrieves projects matching the filter
func (r *ProjectRepositoryImpl) ByFilter(ctx context.Context, filter models.ProjectFilter, orderBy string, limit, offset int) ([]*models.Project, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) }, orderBy, limit, offset)
}

// Count returns the number of projects matching the filter
func (r *ProjectRepositoryImpl) Count(ctx context.Context, filter models.ProjectFilter) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) })
}

// Exists checks whether any project matches the filter
func (r *ProjectRepositoryImpl) Exists(ctx context.Context, filter models.ProjectFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ByUUID retrieves a project by its public UUID
func (r *ProjectRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := r.first(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("uuid = ?", id) })
	if err != nil {
		return nil, fmt.Errorf("failed to find project by uuid: %w", err)
	}
	return project, nil
}

// BySlug retrieves a project by its slug
func (r *ProjectRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.Project, error) {
	project, err := r.first(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("slug = ?", slug) })
	if err != nil {
		return nil, fmt.Errorf("failed to find project by slug: %w", err)
	}
	return project, nil
}

func (r *ProjectRepositoryImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.Exists(ctx, models.ProjectFilter{Slug: &slug})
}

// TransitionStatus performs a conditional bulk update and returns the affected rows.
// Rows already moved by an earlier run no longer match from, so repeating it is a no-op.
func (r *ProjectRepositoryImpl) TransitionStatus(ctx context.Context, from, to models.LaunchStatus, start, end, now time.Time) ([]models.ProjectSummary, error) {
	if to.Stage() <= from.Stage() {
		return nil, fmt.Errorf("refusing backward transition %s -> %s", from, to)
	}

	var updated []models.Project
	err := r.write(ctx, func(db *gorm.DB) error {
		return db.Model(&updated).
			Clauses(summaryColumns).
			Where("launch_status = ?", from).
			Where("scheduled_launch_date >= ? AND scheduled_launch_date < ?", start, end).
			Updates(map[string]any{
				"launch_status": to,
				"updated_at":    now,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transition projects %s -> %s: %w", from, to, err)
	}

	return toSummaries(updated), nil
}

// SetDailyRanking writes the rank of a single project
func (r *ProjectRepositoryImpl) SetDailyRanking(ctx context.Context, projectID uint, rank int, now time.Time) error {
	return r.write(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Project{}).
			Where("id = ?", projectID).
			Updates(map[string]any{
				"daily_ranking": rank,
				"updated_at":    now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to set daily ranking of project %d: %w", projectID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("failed to set daily ranking of project %d: %w", projectID, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// DeleteAbandonedPayments hard-deletes payment_pending rows whose updated_at is at or before deadline
func (r *ProjectRepositoryImpl) DeleteAbandonedPayments(ctx context.Context, deadline time.Time) ([]models.ProjectSummary, error) {
	var deleted []models.Project
	err := r.write(ctx, func(db *gorm.DB) error {
		return db.Clauses(summaryColumns).
			Where("launch_status = ?", models.LaunchStatusPaymentPending).
			Where("updated_at <= ?", deadline).
			Delete(&deleted).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete abandoned payments: %w", err)
	}

	return toSummaries(deleted), nil
}

// ListLaunching returns projects in status launching within [start, end)
func (r *ProjectRepositoryImpl) ListLaunching(ctx context.Context, status models.LaunchStatus, start, end time.Time) ([]*models.Project, error) {
	return r.ByFilter(ctx, models.ProjectFilter{
		LaunchStatus: &status,
		LaunchFrom:   &start,
		LaunchBefore: &end,
	}, "id ASC", 0, 0)
}

// ListRankedWinners returns launched projects ranked 1..maxRank within [start, end)
func (r *ProjectRepositoryImpl) ListRankedWinners(ctx context.Context, start, end time.Time, maxRank int) ([]*models.Project, error) {
	status := models.LaunchStatusLaunched
	filter := models.ProjectFilter{
		LaunchStatus: &status,
		LaunchFrom:   &start,
		LaunchBefore: &end,
	}
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return r.applyFilter(db, filter).
			Where("daily_ranking BETWEEN ? AND ?", 1, maxRank)
	}, "daily_ranking ASC, id ASC", 0, 0)
}

func (r *ProjectRepositoryImpl) applyFilter(db *gorm.DB, filter models.ProjectFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Slug != nil {
		db = db.Where("slug = ?", *filter.Slug)
	}
	if filter.LaunchStatus != nil {
		db = db.Where("launch_status = ?", *filter.LaunchStatus)
	}
	if filter.CreatedBy != nil {
		db = db.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.LaunchFrom != nil {
		db = db.Where("scheduled_launch_date >= ?", *filter.LaunchFrom)
	}
	if filter.LaunchBefore != nil {
		db = db.Where("scheduled_launch_date < ?", *filter.LaunchBefore)
	}
	if filter.RankedOnly != nil && *filter.RankedOnly {
		db = db.Where("daily_ranking IS NOT NULL")
	}
	if filter.UpdatedAtOrBefore != nil {
		db = db.Where("updated_at <= ?", *filter.UpdatedAtOrBefore)
	}
	return db
}

func toSummaries(projects []models.Project) []models.ProjectSummary {
	out := make([]models.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, models.ProjectSummary{ID: p.ID, Name: p.Name})
	}
	return out
}
