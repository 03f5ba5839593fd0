package businessflow

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/openlaunch/open-launch/app/services"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/repository"
	"golang.org/x/sync/errgroup"
)

const (
	notificationKindReminder = "reminder"
	notificationKindWinner   = "winner"
)

// NotificationTally counts the outcome of one notification loop. Skipped
// candidates have no creator to notify and are neither sent nor failed.
type NotificationTally struct {
	Found   int
	Sent    int
	Failed  int
	Skipped int
}

// LaunchNotifier emails project creators about their launch day and their badges
type LaunchNotifier struct {
	userRepo    repository.UserRepository
	mailer      services.TransactionalMailer
	concurrency int
	logger      *log.Logger
}

// NewLaunchNotifier creates a notifier. concurrency <= 1 sends one email at a time.
func NewLaunchNotifier(userRepo repository.UserRepository, mailer services.TransactionalMailer, concurrency int, logger *log.Logger) *LaunchNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LaunchNotifier{
		userRepo:    userRepo,
		mailer:      mailer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// SendLaunchReminders tells the creator of each project that it is live today
func (n *LaunchNotifier) SendLaunchReminders(ctx context.Context, projects []*models.Project) NotificationTally {
	return n.dispatch(ctx, notificationKindReminder, projects, func(ctx context.Context, p *models.Project, to services.Recipient) services.SendResult {
		return n.mailer.SendLaunchReminder(ctx, to, p.Name, p.Slug)
	})
}

// SendWinnerBadges tells the creator of each ranked project about its badge
func (n *LaunchNotifier) SendWinnerBadges(ctx context.Context, projects []*models.Project) NotificationTally {
	return n.dispatch(ctx, notificationKindWinner, projects, func(ctx context.Context, p *models.Project, to services.Recipient) services.SendResult {
		return n.mailer.SendWinnerBadge(ctx, to, p.Name, p.Slug, *p.DailyRanking, p.LaunchType.IsPremium())
	})
}

type sendFunc func(ctx context.Context, p *models.Project, to services.Recipient) services.SendResult

type outcome int

const (
	outcomeSent outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (o outcome) label() string {
	switch o {
	case outcomeSent:
		return "sent"
	case outcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

func (n *LaunchNotifier) dispatch(ctx context.Context, kind string, projects []*models.Project, send sendFunc) NotificationTally {
	var sent, failed, skipped atomic.Int64

	record := func(o outcome) {
		switch o {
		case outcomeSent:
			sent.Add(1)
		case outcomeFailed:
			failed.Add(1)
		default:
			skipped.Add(1)
		}
		dailyTasksEmailsTotal.WithLabelValues(kind, o.label()).Inc()
	}

	if n.concurrency <= 1 {
		for _, p := range projects {
			record(n.notifyOne(ctx, kind, p, send))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(n.concurrency)
		for _, p := range projects {
			g.Go(func() error {
				record(n.notifyOne(ctx, kind, p, send))
				return nil
			})
		}
		_ = g.Wait()
	}

	return NotificationTally{
		Found:   len(projects),
		Sent:    int(sent.Load()),
		Failed:  int(failed.Load()),
		Skipped: int(skipped.Load()),
	}
}

func (n *LaunchNotifier) notifyOne(ctx context.Context, kind string, p *models.Project, send sendFunc) outcome {
	if p.CreatedBy == nil {
		n.logger.Printf("WARN skipping %s for project %d (%s): missing creator", kind, p.ID, p.Name)
		return outcomeSkipped
	}
	if kind == notificationKindWinner && p.DailyRanking == nil {
		n.logger.Printf("WARN skipping %s for project %d (%s): missing ranking", kind, p.ID, p.Name)
		return outcomeSkipped
	}

	creator, err := n.userRepo.ByID(ctx, *p.CreatedBy)
	if err != nil {
		n.logger.Printf("WARN %s for project %d (%s): creator lookup failed: %v", kind, p.ID, p.Name, err)
		return outcomeFailed
	}
	if creator == nil || creator.Email == "" {
		n.logger.Printf("WARN %s for project %d (%s): user %d not found", kind, p.ID, p.Name, *p.CreatedBy)
		return outcomeFailed
	}

	res := send(ctx, p, services.Recipient{Email: creator.Email, Name: creator.DisplayName("")})
	if !res.Success {
		n.logger.Printf("%s email for project %d (%s) to %s failed: %s", kind, p.ID, p.Name, creator.Email, res.Error)
		return outcomeFailed
	}
	n.logger.Printf("sent %s email to %s for %s", kind, creator.Email, p.Name)
	return outcomeSent
}
