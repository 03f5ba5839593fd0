package businessflow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/app/services"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/repository"
	"github.com/openlaunch/open-launch/utils"
)

// Trigger names recorded on DailyTaskRun
const (
	TriggerHTTP      = "http"
	TriggerScheduler = "scheduler"
	TriggerManual    = "manual"
)

type triggerKey struct{}

// WithTrigger records what started a daily run
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFrom returns the trigger recorded by WithTrigger, defaulting to manual
func TriggerFrom(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return TriggerManual
}

// DailyTasksFlow advances the launch lifecycle once per day: it promotes
// today's launches, closes yesterday's and ranks them, reaps unpaid
// submissions and emails the affected creators.
type DailyTasksFlow interface {
	RunDailyTasks(ctx context.Context) (*dto.DailyTasksReport, error)
	LatestRun(ctx context.Context) (*models.DailyTaskRun, error)
}

// DailyTasksOptions tunes the daily job
type DailyTasksOptions struct {
	Location      *time.Location
	PaymentWindow time.Duration
	Clock         func() time.Time
	Logger        *log.Logger
}

type DailyTasksFlowImpl struct {
	projectRepo repository.ProjectRepository
	upvoteRepo  repository.UpvoteRepository
	runRepo     repository.DailyTaskRunRepository
	notifier    *LaunchNotifier
	announcer   services.LaunchAnnouncer

	loc           *time.Location
	paymentWindow time.Duration
	clock         func() time.Time
	logger        *log.Logger

	mu sync.Mutex
}

// NewDailyTasksFlow creates the daily job. runRepo and announcer may be nil.
func NewDailyTasksFlow(
	projectRepo repository.ProjectRepository,
	upvoteRepo repository.UpvoteRepository,
	runRepo repository.DailyTaskRunRepository,
	notifier *LaunchNotifier,
	announcer services.LaunchAnnouncer,
	opts DailyTasksOptions,
) *DailyTasksFlowImpl {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PaymentWindow <= 0 {
		opts.PaymentWindow = utils.DefaultPaymentWindow
	}
	if opts.Clock == nil {
		opts.Clock = utils.UTCNow
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if announcer == nil {
		announcer = services.NoopLaunchAnnouncer{}
	}
	return &DailyTasksFlowImpl{
		projectRepo:   projectRepo,
		upvoteRepo:    upvoteRepo,
		runRepo:       runRepo,
		notifier:      notifier,
		announcer:     announcer,
		loc:           opts.Location,
		paymentWindow: opts.PaymentWindow,
		clock:         opts.Clock,
		logger:        opts.Logger,
	}
}

// RunDailyTasks runs every stage in order against one LaunchWindow and
// stops at the first unexpected error. Writes made by completed stages stay.
func (f *DailyTasksFlowImpl) RunDailyTasks(ctx context.Context) (*dto.DailyTasksReport, error) {
	if !f.mu.TryLock() {
		return nil, ErrDailyTasksAlreadyRunning
	}
	defer f.mu.Unlock()

	started := time.Now()
	w := NewLaunchWindow(f.clock(), f.loc, f.paymentWindow)
	f.logger.Printf("[%s] starting daily tasks for %s (trigger=%s request_id=%s)",
		w.Now.Format(time.RFC3339), w.Today.Format(utils.DayLayout), TriggerFrom(ctx), RequestIDFrom(ctx))

	run := f.startRun(ctx, w)
	report, err := f.runStages(ctx, w)
	f.finishRun(ctx, run, report, err)

	dailyTasksDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		dailyTasksRunsTotal.WithLabelValues("failed").Inc()
		f.logger.Printf("daily tasks failed: %v", err)
		return nil, NewBusinessError("DAILY_TASKS_FAILED", "Daily tasks failed", err)
	}
	dailyTasksRunsTotal.WithLabelValues("succeeded").Inc()

	lu, en := report.LaunchUpdates, report.EmailNotifications
	f.logger.Printf("daily tasks completed: %d scheduled->ongoing, %d ongoing->launched, %d ranked, %d abandoned deleted, reminders %d/%d sent (%d failed), winners %d/%d sent (%d failed)",
		lu.ScheduledToOngoing, lu.OngoingToLaunched, lu.ProjectsRanked, lu.AbandonedPaymentsDeleted,
		en.ReminderEmails.Sent, en.ReminderEmails.ProjectsFound, en.ReminderEmails.Failed,
		en.WinnerEmails.Sent, en.WinnerEmails.WinnersFound, en.WinnerEmails.Failed)
	return report, nil
}

func (f *DailyTasksFlowImpl) LatestRun(ctx context.Context) (*models.DailyTaskRun, error) {
	if f.runRepo == nil {
		return nil, nil
	}
	return f.runRepo.Latest(ctx)
}

func (f *DailyTasksFlowImpl) runStages(ctx context.Context, w LaunchWindow) (*dto.DailyTasksReport, error) {
	report := &dto.DailyTasksReport{}
	lu := &report.LaunchUpdates

	toOngoing, err := f.projectRepo.TransitionStatus(ctx, models.LaunchStatusScheduled, models.LaunchStatusOngoing, w.Today, w.EndOfToday, w.Now)
	if err != nil {
		return report, fmt.Errorf("scheduled to ongoing: %w", err)
	}
	lu.ScheduledToOngoing = len(toOngoing)
	dailyTasksProjectsTotal.WithLabelValues("scheduled_to_ongoing").Add(float64(len(toOngoing)))
	f.logger.Printf("projects moved to ONGOING: %d", len(toOngoing))

	launched, err := f.projectRepo.TransitionStatus(ctx, models.LaunchStatusOngoing, models.LaunchStatusLaunched, w.Yesterday, w.Today, w.Now)
	if err != nil {
		return report, fmt.Errorf("ongoing to launched: %w", err)
	}
	lu.OngoingToLaunched = len(launched)
	dailyTasksProjectsTotal.WithLabelValues("ongoing_to_launched").Add(float64(len(launched)))
	f.logger.Printf("projects moved to LAUNCHED: %d", len(launched))

	ranked, err := f.rankLaunched(ctx, launched, w.Now)
	if err != nil {
		return report, fmt.Errorf("ranking: %w", err)
	}
	lu.ProjectsRanked = ranked
	dailyTasksProjectsTotal.WithLabelValues("ranked").Add(float64(ranked))

	abandoned, err := f.projectRepo.DeleteAbandonedPayments(ctx, w.PaymentDeadline)
	if err != nil {
		return report, fmt.Errorf("abandoned payments: %w", err)
	}
	lu.AbandonedPaymentsDeleted = len(abandoned)
	dailyTasksProjectsTotal.WithLabelValues("abandoned_deleted").Add(float64(len(abandoned)))
	f.logger.Printf("abandoned payments deleted: %d", len(abandoned))

	ongoing, err := f.projectRepo.ListLaunching(ctx, models.LaunchStatusOngoing, w.Today, w.EndOfToday)
	if err != nil {
		return report, fmt.Errorf("list ongoing launches: %w", err)
	}
	f.announce(ctx, w, ongoing)

	reminders := f.notifier.SendLaunchReminders(ctx, ongoing)
	report.EmailNotifications.ReminderEmails = dto.ReminderEmailsReport{
		ProjectsFound: reminders.Found,
		Sent:          reminders.Sent,
		Failed:        reminders.Failed,
	}
	f.logger.Printf("reminder emails: %d found, %d sent, %d failed, %d skipped", reminders.Found, reminders.Sent, reminders.Failed, reminders.Skipped)

	winners, err := f.projectRepo.ListRankedWinners(ctx, w.Yesterday, w.Today, models.MaxDailyRank)
	if err != nil {
		return report, fmt.Errorf("list winners: %w", err)
	}
	badges := f.notifier.SendWinnerBadges(ctx, winners)
	report.EmailNotifications.WinnerEmails = dto.WinnerEmailsReport{
		WinnersFound: badges.Found,
		Sent:         badges.Sent,
		Failed:       badges.Failed,
	}
	f.logger.Printf("winner emails: %d found, %d sent, %d failed, %d skipped", badges.Found, badges.Sent, badges.Failed, badges.Skipped)

	return report, nil
}

// rankLaunched ranks the projects that launched in this run and returns how many ranks were written
func (f *DailyTasksFlowImpl) rankLaunched(ctx context.Context, launched []models.ProjectSummary, now time.Time) (int, error) {
	if len(launched) == 0 {
		return 0, nil
	}

	ids := make([]uint, len(launched))
	for i, p := range launched {
		ids[i] = p.ID
	}
	counts, err := f.upvoteRepo.CountByProjects(ctx, ids)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, a := range AssignRanks(GroupByUpvotes(JoinUpvoteCounts(launched, counts)), models.MaxDailyRank) {
		if err := f.projectRepo.SetDailyRanking(ctx, a.ProjectID, a.Rank, now); err != nil {
			f.logger.Printf("WARN failed to rank project %d (%s): %v", a.ProjectID, a.Name, err)
			continue
		}
		f.logger.Printf("ranked #%d: %s with %d upvotes", a.Rank, a.Name, a.Upvotes)
		written++
	}
	f.logger.Printf("total projects ranked: %d", written)
	return written, nil
}

func (f *DailyTasksFlowImpl) announce(ctx context.Context, w LaunchWindow, ongoing []*models.Project) {
	if len(ongoing) == 0 {
		return
	}
	launches := make([]services.LaunchedProject, 0, len(ongoing))
	for _, p := range ongoing {
		launches = append(launches, services.LaunchedProject{Name: p.Name, Slug: p.Slug, Description: p.Description})
	}
	if err := f.announcer.AnnounceLaunches(ctx, w.Today, launches); err != nil {
		f.logger.Printf("WARN launch announcement failed: %v", err)
	}
}

func (f *DailyTasksFlowImpl) startRun(ctx context.Context, w LaunchWindow) *models.DailyTaskRun {
	if f.runRepo == nil {
		return nil
	}
	run := &models.DailyTaskRun{
		Trigger:   TriggerFrom(ctx),
		Status:    models.DailyTaskRunStatusRunning,
		LaunchDay: w.Today,
		StartedAt: utils.UTCNow(),
	}
	if err := f.runRepo.Save(ctx, run); err != nil {
		f.logger.Printf("WARN failed to record daily task run: %v", err)
		return nil
	}
	return run
}

func (f *DailyTasksFlowImpl) finishRun(ctx context.Context, run *models.DailyTaskRun, report *dto.DailyTasksReport, runErr error) {
	if run == nil {
		return
	}
	if report != nil {
		lu, en := report.LaunchUpdates, report.EmailNotifications
		run.ScheduledToOngoing = lu.ScheduledToOngoing
		run.OngoingToLaunched = lu.OngoingToLaunched
		run.ProjectsRanked = lu.ProjectsRanked
		run.AbandonedPaymentsDeleted = lu.AbandonedPaymentsDeleted
		run.RemindersFound = en.ReminderEmails.ProjectsFound
		run.RemindersSent = en.ReminderEmails.Sent
		run.RemindersFailed = en.ReminderEmails.Failed
		run.WinnersFound = en.WinnerEmails.WinnersFound
		run.WinnersSent = en.WinnerEmails.Sent
		run.WinnersFailed = en.WinnerEmails.Failed
	}
	run.Status = models.DailyTaskRunStatusSucceeded
	if runErr != nil {
		run.Status = models.DailyTaskRunStatusFailed
		run.LastError = utils.ToPtr(runErr.Error())
	}
	run.FinishedAt = utils.UTCNowPtr()

	// the job's own context may already be cancelled
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := f.runRepo.Update(persistCtx, run); err != nil {
		f.logger.Printf("WARN failed to update daily task run %d: %v", run.ID, err)
	}
}

// ToDailyTaskRunDTO converts a persisted run for the admin API
func ToDailyTaskRunDTO(run models.DailyTaskRun) dto.DailyTaskRunDTO {
	out := dto.DailyTaskRunDTO{
		ID:        run.ID,
		Trigger:   run.Trigger,
		Status:    string(run.Status),
		LaunchDay: run.LaunchDay.Format(utils.DayLayout),
		LastError: run.LastError,
		StartedAt: run.StartedAt.Format(time.RFC3339),
		Report: dto.DailyTasksReport{
			LaunchUpdates: dto.LaunchUpdatesReport{
				ScheduledToOngoing:       run.ScheduledToOngoing,
				OngoingToLaunched:        run.OngoingToLaunched,
				ProjectsRanked:           run.ProjectsRanked,
				AbandonedPaymentsDeleted: run.AbandonedPaymentsDeleted,
			},
			EmailNotifications: dto.EmailNotificationsReport{
				ReminderEmails: dto.ReminderEmailsReport{ProjectsFound: run.RemindersFound, Sent: run.RemindersSent, Failed: run.RemindersFailed},
				WinnerEmails:   dto.WinnerEmailsReport{WinnersFound: run.WinnersFound, Sent: run.WinnersSent, Failed: run.WinnersFailed},
			},
		},
	}
	if run.FinishedAt != nil {
		out.FinishedAt = utils.ToPtr(run.FinishedAt.Format(time.RFC3339))
	}
	return out
}
