package dto

// DailyTasksResponse is the body returned by the daily tasks trigger
type DailyTasksResponse struct {
	Message string           `json:"message" example:"Daily cron tasks completed successfully"`
	Details DailyTasksReport `json:"details"`
}

// DailyTasksReport summarizes one run of the daily lifecycle job
type DailyTasksReport struct {
	LaunchUpdates      LaunchUpdatesReport      `json:"launchUpdates"`
	EmailNotifications EmailNotificationsReport `json:"emailNotifications"`
}

type LaunchUpdatesReport struct {
	ScheduledToOngoing       int `json:"scheduledToOngoing"`
	OngoingToLaunched        int `json:"ongoingToLaunched"`
	ProjectsRanked           int `json:"projectsRanked"`
	AbandonedPaymentsDeleted int `json:"abandonedPaymentsDeleted"`
}

type EmailNotificationsReport struct {
	ReminderEmails ReminderEmailsReport `json:"reminderEmails"`
	WinnerEmails   WinnerEmailsReport   `json:"winnerEmails"`
}

type ReminderEmailsReport struct {
	ProjectsFound int `json:"projectsFound"`
	Sent          int `json:"sent"`
	Failed        int `json:"failed"`
}

type WinnerEmailsReport struct {
	WinnersFound int `json:"winnersFound"`
	Sent         int `json:"sent"`
	Failed       int `json:"failed"`
}
