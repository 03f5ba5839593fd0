package dto

type RankingExportRequest struct {
	Date string `query:"date" validate:"required,datetime=2006-01-02"`
}

// DailyTaskRunDTO is the persisted outcome of the last daily job
type DailyTaskRunDTO struct {
	ID         uint             `json:"id"`
	Trigger    string           `json:"trigger"`
	Status     string           `json:"status"`
	LaunchDay  string           `json:"launch_day"`
	Report     DailyTasksReport `json:"report"`
	LastError  *string          `json:"last_error,omitempty"`
	StartedAt  string           `json:"started_at"`
	FinishedAt *string          `json:"finished_at,omitempty"`
}
