package repository

import (
	"context"
	"fmt"

	"github.com/openlaunch/open-launch/models"
	"gorm.io/gorm"
)

// DailyTaskRunRepositoryImpl implements DailyTaskRunRepository interface
type DailyTaskRunRepositoryImpl struct {
	*BaseRepository[models.DailyTaskRun, models.DailyTaskRunFilter]
}

// NewDailyTaskRunRepository creates a new daily task run repository
func NewDailyTaskRunRepository(db *gorm.DB) DailyTaskRunRepository {
	return &DailyTaskRunRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DailyTaskRun, models.DailyTaskRunFilter](db),
	}
}

func (r *DailyTaskRunRepositoryImpl) ByFilter(ctx context.Context, filter models.DailyTaskRunFilter, orderBy string, limit, offset int) ([]*models.DailyTaskRun, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) }, orderBy, limit, offset)
}

func (r *DailyTaskRunRepositoryImpl) Count(ctx context.Context, filter models.DailyTaskRunFilter) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) })
}

func (r *DailyTaskRunRepositoryImpl) Exists(ctx context.Context, filter models.DailyTaskRunFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update persists every column of an existing run
func (r *DailyTaskRunRepositoryImpl) Update(ctx context.Context, run *models.DailyTaskRun) error {
	return r.write(ctx, func(db *gorm.DB) error {
		if err := db.Save(run).Error; err != nil {
			return fmt.Errorf("failed to update daily task run %d: %w", run.ID, err)
		}
		return nil
	})
}

// Latest returns the most recently started run, or nil if none exist
func (r *DailyTaskRunRepositoryImpl) Latest(ctx context.Context) (*models.DailyTaskRun, error) {
	runs, err := r.ByFilter(ctx, models.DailyTaskRunFilter{}, "started_at DESC, id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

func (r *DailyTaskRunRepositoryImpl) applyFilter(db *gorm.DB, filter models.DailyTaskRunFilter) *gorm.DB {
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.LaunchDay != nil {
		db = db.Where("launch_day = ?", filter.LaunchDay.Format("2006-01-02"))
	}
	return db
}
