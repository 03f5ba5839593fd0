package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email           string     `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	Name            *string    `gorm:"size:255" json:"name,omitempty"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	EmailVerified   bool       `gorm:"not null;default:false" json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns the user's name or fallback when the name is unset
func (u *User) DisplayName(fallback string) string {
	if u == nil || u.Name == nil || *u.Name == "" {
		return fallback
	}
	return *u.Name
}

type UserFilter struct {
	ID    *uint
	Email *string
}
