package models

import "time"

// Upvote is a single (project, voter) fact
type Upvote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:uk_upvotes_project_user,priority:1;index:idx_upvotes_project_id" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_upvotes_project_user,priority:2" json:"user_id"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Upvote) TableName() string {
	return "upvotes"
}

// UpvoteCount is one row of a grouped count over upvotes
type UpvoteCount struct {
	ProjectID uint  `gorm:"column:project_id"`
	Count     int64 `gorm:"column:count"`
}

type UpvoteFilter struct {
	ProjectID *uint
	UserID    *uint
}
