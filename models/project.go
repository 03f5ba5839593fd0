// Package models contains the persisted entities of the launch directory
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// LaunchStatus is the lifecycle state of a project
type LaunchStatus string

const (
	LaunchStatusPaymentPending LaunchStatus = "payment_pending"
	LaunchStatusScheduled      LaunchStatus = "scheduled"
	LaunchStatusOngoing        LaunchStatus = "ongoing"
	LaunchStatusLaunched       LaunchStatus = "launched"
)

// String returns the string representation of the status
func (s LaunchStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s LaunchStatus) Valid() bool {
	switch s {
	case LaunchStatusPaymentPending, LaunchStatusScheduled,
		LaunchStatusOngoing, LaunchStatusLaunched:
		return true
	default:
		return false
	}
}

// Stage returns the position of the status in the lifecycle.
// Transitions only ever move a project to a higher stage.
func (s LaunchStatus) Stage() int {
	switch s {
	case LaunchStatusPaymentPending:
		return 0
	case LaunchStatusScheduled:
		return 1
	case LaunchStatusOngoing:
		return 2
	case LaunchStatusLaunched:
		return 3
	default:
		return -1
	}
}

// Scan implements the sql.Scanner interface for LaunchStatus
func (s *LaunchStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = LaunchStatus(v)
	case []byte:
		*s = LaunchStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LaunchStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for LaunchStatus
func (s LaunchStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid LaunchStatus: %s", s)
	}
	return string(s), nil
}

// LaunchType only changes email wording and pricing, never lifecycle rules
type LaunchType string

const (
	LaunchTypeFree        LaunchType = "free"
	LaunchTypePremium     LaunchType = "premium"
	LaunchTypePremiumPlus LaunchType = "premium_plus"
)

func (t LaunchType) Valid() bool {
	switch t {
	case LaunchTypeFree, LaunchTypePremium, LaunchTypePremiumPlus:
		return true
	default:
		return false
	}
}

// IsPremium reports whether the launch was paid for
func (t LaunchType) IsPremium() bool {
	return t == LaunchTypePremium || t == LaunchTypePremiumPlus
}

// MaxDailyRank is the lowest rank that is persisted for a launch day
const MaxDailyRank = 3

type Project struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UUID                uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_projects_uuid" json:"uuid"`
	Slug                string         `gorm:"size:255;not null;uniqueIndex:uk_projects_slug" json:"slug"`
	Name                string         `gorm:"size:255;not null" json:"name"`
	Description         string         `gorm:"type:text" json:"description"`
	WebsiteURL          string         `gorm:"size:512" json:"website_url"`
	LogoURL             *string        `gorm:"size:512" json:"logo_url,omitempty"`
	ProductImageURL     *string        `gorm:"size:512" json:"product_image_url,omitempty"`
	Categories          pq.StringArray `gorm:"type:text[]" json:"categories"`
	LaunchStatus        LaunchStatus   `gorm:"type:varchar(32);not null;index:idx_projects_status_launch_date,priority:1" json:"launch_status"`
	LaunchType          LaunchType     `gorm:"type:varchar(32);not null;default:free" json:"launch_type"`
	ScheduledLaunchDate *time.Time     `gorm:"index:idx_projects_status_launch_date,priority:2" json:"scheduled_launch_date,omitempty"`
	DailyRanking        *int           `json:"daily_ranking,omitempty"`
	CreatedBy           *uint          `gorm:"index:idx_projects_created_by" json:"created_by,omitempty"`
	Creator             *User          `gorm:"foreignKey:CreatedBy;references:ID" json:"-"`
	CreatedAt           time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_projects_updated_at" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectSummary is the id/name pair reported by bulk lifecycle writes
type ProjectSummary struct {
	ID   uint   `gorm:"column:id" json:"id"`
	Name string `gorm:"column:name" json:"name"`
}

// ProjectFilter represents filter criteria for project queries
type ProjectFilter struct {
	ID                *uint
	UUID              *uuid.UUID
	Slug              *string
	LaunchStatus      *LaunchStatus
	CreatedBy         *uint
	LaunchFrom        *time.Time // inclusive
	LaunchBefore      *time.Time // exclusive
	RankedOnly        *bool
	UpdatedAtOrBefore *time.Time
}
