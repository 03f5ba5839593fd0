package dto

// Payment verification statuses
const (
	PaymentVerifyComplete = "complete"
	PaymentVerifyPending  = "pending"
	PaymentVerifyFailed   = "failed"
	PaymentVerifyDisabled = "disabled"
)

// PaymentVerifyRequest is read from the query string
type PaymentVerifyRequest struct {
	SessionID string `query:"session_id" validate:"required,max=255"`
}

// PaymentVerifyResponse reports the state of a checkout session
type PaymentVerifyResponse struct {
	Status       string  `json:"status" example:"complete"`
	Message      string  `json:"message,omitempty"`
	ProjectID    *uint   `json:"projectId,omitempty"`
	ProjectUUID  *string `json:"projectUuid,omitempty"`
	ProjectSlug  *string `json:"projectSlug,omitempty"`
	ProjectName  *string `json:"projectName,omitempty"`
	LaunchStatus *string `json:"launchStatus,omitempty"`
}
