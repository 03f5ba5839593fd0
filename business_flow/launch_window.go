package businessflow

import (
	"time"

	"github.com/openlaunch/open-launch/utils"
)

// LaunchWindow holds the boundaries shared by every stage of one daily run.
// All ranges are half-open: [start, end).
type LaunchWindow struct {
	Now             time.Time
	Today           time.Time
	Yesterday       time.Time
	EndOfToday      time.Time
	EndOfYesterday  time.Time
	PaymentDeadline time.Time
}

// NewLaunchWindow computes the boundaries of the launch day containing now, as observed in loc
func NewLaunchWindow(now time.Time, loc *time.Location, paymentWindow time.Duration) LaunchWindow {
	if paymentWindow <= 0 {
		paymentWindow = utils.DefaultPaymentWindow
	}
	today := utils.StartOfDay(now, loc)
	return LaunchWindow{
		Now:             now,
		Today:           today,
		Yesterday:       utils.AddDays(today, -1),
		EndOfToday:      utils.AddDays(today, 1),
		EndOfYesterday:  today,
		PaymentDeadline: now.Add(-paymentWindow),
	}
}
