package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dailyTasksRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_tasks_runs_total",
			Help: "Daily lifecycle job runs partitioned by outcome",
		},
		[]string{"status"},
	)

	// stage is one of scheduled_to_ongoing, ongoing_to_launched, ranked, abandoned_deleted
	dailyTasksProjectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_tasks_projects_total",
			Help: "Projects affected by each stage of the daily lifecycle job",
		},
		[]string{"stage"},
	)

	dailyTasksEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_tasks_emails_total",
			Help: "Notification emails attempted by the daily lifecycle job",
		},
		[]string{"kind", "result"},
	)

	dailyTasksDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "daily_tasks_duration_seconds",
			Help:    "Wall clock duration of the daily lifecycle job",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)
