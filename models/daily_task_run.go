package models

import "time"

type DailyTaskRunStatus string

const (
	DailyTaskRunStatusRunning   DailyTaskRunStatus = "running"
	DailyTaskRunStatusSucceeded DailyTaskRunStatus = "succeeded"
	DailyTaskRunStatusFailed    DailyTaskRunStatus = "failed"
)

// DailyTaskRun records the outcome of one invocation of the daily lifecycle job
type DailyTaskRun struct {
	ID                       uint               `gorm:"primaryKey" json:"id"`
	Trigger                  string             `gorm:"size:30;not null" json:"trigger"`
	Status                   DailyTaskRunStatus `gorm:"size:30;not null;index:idx_daily_task_runs_status" json:"status"`
	LaunchDay                time.Time          `gorm:"type:date;not null;index:idx_daily_task_runs_launch_day" json:"launch_day"`
	ScheduledToOngoing       int                `gorm:"not null;default:0" json:"scheduled_to_ongoing"`
	OngoingToLaunched        int                `gorm:"not null;default:0" json:"ongoing_to_launched"`
	ProjectsRanked           int                `gorm:"not null;default:0" json:"projects_ranked"`
	AbandonedPaymentsDeleted int                `gorm:"not null;default:0" json:"abandoned_payments_deleted"`
	RemindersFound           int                `gorm:"not null;default:0" json:"reminders_found"`
	RemindersSent            int                `gorm:"not null;default:0" json:"reminders_sent"`
	RemindersFailed          int                `gorm:"not null;default:0" json:"reminders_failed"`
	WinnersFound             int                `gorm:"not null;default:0" json:"winners_found"`
	WinnersSent              int                `gorm:"not null;default:0" json:"winners_sent"`
	WinnersFailed            int                `gorm:"not null;default:0" json:"winners_failed"`
	LastError                *string            `gorm:"type:text" json:"last_error,omitempty"`
	StartedAt                time.Time          `gorm:"not null" json:"started_at"`
	FinishedAt               *time.Time         `json:"finished_at,omitempty"`
}

func (DailyTaskRun) TableName() string {
	return "daily_task_runs"
}

type DailyTaskRunFilter struct {
	Status    *DailyTaskRunStatus
	LaunchDay *time.Time
}
