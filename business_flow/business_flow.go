package businessflow

import (
	"context"
	"time"

	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/models"
)

type contextKey string

// RequestIDKey carries the X-Request-ID of the HTTP request that started a flow
const RequestIDKey contextKey = "request_id"

// RequestIDFrom returns the request id stored by the handler, if any
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// ClientMetadata holds client information attached to auth events
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func (cm *ClientMetadata) String() string {
	if cm == nil {
		return "-"
	}
	return cm.IPAddress + " " + cm.RequestID
}

// ToUserInfo converts a user model for authentication responses
func ToUserInfo(user models.User) dto.UserInfo {
	return dto.UserInfo{
		ID:            user.ID,
		UUID:          user.UUID.String(),
		Email:         user.Email,
		Name:          user.DisplayName(""),
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
}

func ToProjectDTO(p models.Project, upvotes int64) dto.ProjectDTO {
	categories := []string(p.Categories)
	if categories == nil {
		categories = []string{}
	}
	return dto.ProjectDTO{
		ID:                  p.ID,
		UUID:                p.UUID.String(),
		Slug:                p.Slug,
		Name:                p.Name,
		Description:         p.Description,
		WebsiteURL:          p.WebsiteURL,
		LogoURL:             p.LogoURL,
		ProductImageURL:     p.ProductImageURL,
		Categories:          categories,
		LaunchStatus:        p.LaunchStatus.String(),
		LaunchType:          string(p.LaunchType),
		ScheduledLaunchDate: p.ScheduledLaunchDate,
		DailyRanking:        p.DailyRanking,
		Upvotes:             upvotes,
		CreatedAt:           p.CreatedAt,
	}
}

func ToCommentDTO(c models.Comment) dto.CommentDTO {
	return dto.CommentDTO{
		ID:         c.ID,
		Body:       c.Body,
		AuthorID:   c.UserID,
		AuthorName: c.User.DisplayName("Anonymous"),
		CreatedAt:  c.CreatedAt,
	}
}
