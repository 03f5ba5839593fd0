// Package scheduler runs the daily lifecycle job inside the API process
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/openlaunch/open-launch/app/dto"
	businessflow "github.com/openlaunch/open-launch/business_flow"
	"github.com/robfig/cron/v3"
)

const DefaultDailySchedule = "5 0 * * *"

// DailyRunner is the part of the daily tasks flow the scheduler needs
type DailyRunner interface {
	RunDailyTasks(ctx context.Context) (*dto.DailyTasksReport, error)
}

// DailyScheduler fires the daily tasks on a cron expression
type DailyScheduler struct {
	runner   DailyRunner
	schedule cron.Schedule
	spec     string
	loc      *time.Location
	timeout  time.Duration
	logger   *log.Logger
}

var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewSchedulerLogger prefixes scheduler lines the same way wherever they are written
func NewSchedulerLogger(w io.Writer) *log.Logger {
	return log.New(w, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// NewDailyScheduler validates spec in loc. An empty spec means DefaultDailySchedule.
func NewDailyScheduler(runner DailyRunner, spec string, loc *time.Location, timeout time.Duration, logger *log.Logger) (*DailyScheduler, error) {
	if spec == "" {
		spec = DefaultDailySchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return &DailyScheduler{
		runner:   runner,
		schedule: schedule,
		spec:     spec,
		loc:      loc,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Next returns the first fire time after t, evaluated in the scheduler's location
func (s *DailyScheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Start launches the cron loop and returns a stop function that waits for a running job
func (s *DailyScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	cronLogger := cron.PrintfLogger(s.logger)
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithParser(specParser),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))
	c.Start()

	s.logger.Printf("daily tasks scheduled spec=%q tz=%s next=%s", s.spec, s.loc, s.Next(time.Now()).Format(time.RFC3339))

	return func() {
		cancel()
		<-c.Stop().Done()
		s.logger.Println("daily scheduler stopped")
	}
}

func (s *DailyScheduler) runOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(businessflow.WithTrigger(parent, businessflow.TriggerScheduler), s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.runner.RunDailyTasks(ctx)
	if err != nil {
		if businessflow.IsDailyTasksAlreadyRunning(err) {
			s.logger.Println("daily tasks skipped: a run is already in progress")
			return
		}
		s.logger.Printf("daily tasks failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return
	}
	u := report.LaunchUpdates
	s.logger.Printf("daily tasks done in %s ongoing=%d launched=%d ranked=%d reaped=%d",
		time.Since(start).Round(time.Millisecond), u.ScheduledToOngoing, u.OngoingToLaunched, u.ProjectsRanked, u.AbandonedPaymentsDeleted)
}
