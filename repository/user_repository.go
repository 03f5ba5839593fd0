package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openlaunch/open-launch/models"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db),
	}
}

func (r *UserRepositoryImpl) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) }, orderBy, limit, offset)
}

func (r *UserRepositoryImpl) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, filter) })
}

func (r *UserRepositoryImpl) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ByEmail retrieves a user by email address, case-insensitively
func (r *UserRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := r.first(ctx, func(db *gorm.DB) *gorm.DB { return r.applyFilter(db, models.UserFilter{Email: &normalized}) })
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.updateColumns(ctx, userID, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
}

func (r *UserRepositoryImpl) MarkEmailVerified(ctx context.Context, userID uint, verifiedAt time.Time) error {
	return r.updateColumns(ctx, userID, map[string]any{
		"email_verified":    true,
		"email_verified_at": verifiedAt,
		"updated_at":        verifiedAt,
	})
}

func (r *UserRepositoryImpl) TouchLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.updateColumns(ctx, userID, map[string]any{"last_login_at": at})
}

func (r *UserRepositoryImpl) updateColumns(ctx context.Context, userID uint, columns map[string]any) error {
	return r.write(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.User{}).Where("id = ?", userID).Updates(columns)
		if res.Error != nil {
			return fmt.Errorf("failed to update user %d: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("failed to update user %d: %w", userID, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func (r *UserRepositoryImpl) applyFilter(db *gorm.DB, filter models.UserFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Email != nil {
		db = db.Where("LOWER(email) = ?", strings.ToLower(*filter.Email))
	}
	return db
}
