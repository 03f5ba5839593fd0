package dto

import "time"

// SubmitProjectRequest is the form used to add a project to the launch queue
type SubmitProjectRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=255"`
	Description     string   `json:"description" validate:"required,min=10,max=5000"`
	WebsiteURL      string   `json:"website_url" validate:"required,url,max=512"`
	LogoURL         *string  `json:"logo_url,omitempty" validate:"omitempty,url,max=512"`
	ProductImageURL *string  `json:"product_image_url,omitempty" validate:"omitempty,url,max=512"`
	Categories      []string `json:"categories" validate:"max=5,dive,min=1,max=50"`
	LaunchType      string   `json:"launch_type" validate:"required,oneof=free premium premium_plus"`
	LaunchDate      string   `json:"launch_date" validate:"required,datetime=2006-01-02" example:"2025-06-02"`
}

// ProjectDTO is the public view of a project
type ProjectDTO struct {
	ID                  uint       `json:"id"`
	UUID                string     `json:"uuid"`
	Slug                string     `json:"slug"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	WebsiteURL          string     `json:"website_url"`
	LogoURL             *string    `json:"logo_url,omitempty"`
	ProductImageURL     *string    `json:"product_image_url,omitempty"`
	Categories          []string   `json:"categories"`
	LaunchStatus        string     `json:"launch_status"`
	LaunchType          string     `json:"launch_type"`
	ScheduledLaunchDate *time.Time `json:"scheduled_launch_date,omitempty"`
	DailyRanking        *int       `json:"daily_ranking,omitempty"`
	Upvotes             int64      `json:"upvotes"`
	CreatedAt           time.Time  `json:"created_at"`
}

type SubmitProjectResponse struct {
	Project ProjectDTO `json:"project"`
	// NeedsPayment is true for premium launches awaiting checkout
	NeedsPayment bool `json:"needs_payment"`
}

type ListLaunchesRequest struct {
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

type ListLaunchesResponse struct {
	Date     string       `json:"date"`
	Projects []ProjectDTO `json:"projects"`
}

type UpvoteResponse struct {
	Upvoted bool  `json:"upvoted"`
	Upvotes int64 `json:"upvotes"`
}
