package businessflow

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/openlaunch/open-launch/app/services"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(users *fakeUserRepo, sender services.EmailSender, concurrency int) *LaunchNotifier {
	mailer := services.NewTransactionalMailer(sender, "https://launch.example", "Open Launch")
	return NewLaunchNotifier(users, mailer, concurrency, log.New(io.Discard, "", 0))
}

func TestLaunchNotifier_IsolatesFailures(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		users := newFakeUserRepo()
		sender := newRecordingSender()

		var projects []*models.Project
		for i, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
			u := users.add(email, "")
			projects = append(projects, &models.Project{ID: uint(i + 1), Name: email, Slug: email, CreatedBy: &u.ID})
		}
		sender.FailFor["b@x.io"] = true

		tally := newTestNotifier(users, sender, concurrency).SendLaunchReminders(context.Background(), projects)

		assert.Equal(t, NotificationTally{Found: 3, Sent: 2, Failed: 1}, tally, "concurrency %d", concurrency)
		assert.ElementsMatch(t, []string{"a@x.io", "b@x.io", "c@x.io"}, sender.Attempts())
	}
}

func TestLaunchNotifier_SkipAccounting(t *testing.T) {
	users := newFakeUserRepo()
	sender := newRecordingSender()
	known := users.add("known@x.io", "Known")
	missing := uint(999)

	projects := []*models.Project{
		{ID: 1, Name: "orphan"},
		{ID: 2, Name: "ghost", CreatedBy: &missing},
		{ID: 3, Name: "fine", CreatedBy: &known.ID},
	}

	tally := newTestNotifier(users, sender, 1).SendLaunchReminders(context.Background(), projects)

	assert.Equal(t, NotificationTally{Found: 3, Sent: 1, Failed: 1, Skipped: 1}, tally)
	assert.Equal(t, []string{"known@x.io"}, sender.Attempts())
}

func TestLaunchNotifier_UserLookupErrorCountsAsFailure(t *testing.T) {
	users := newFakeUserRepo()
	users.err = errBoom
	id := uint(1)

	tally := newTestNotifier(users, newRecordingSender(), 1).SendLaunchReminders(context.Background(), []*models.Project{{ID: 1, CreatedBy: &id}})

	assert.Equal(t, NotificationTally{Found: 1, Failed: 1}, tally)
}

func TestLaunchNotifier_WinnerBadges(t *testing.T) {
	users := newFakeUserRepo()
	sender := newRecordingSender()
	u := users.add("w@x.io", "Win")

	projects := []*models.Project{
		{ID: 1, Name: "Ranked", Slug: "ranked", CreatedBy: &u.ID, DailyRanking: utils.ToPtr(2), LaunchType: models.LaunchTypePremium},
		{ID: 2, Name: "Unranked", Slug: "unranked", CreatedBy: &u.ID},
	}

	tally := newTestNotifier(users, sender, 1).SendWinnerBadges(context.Background(), projects)
	assert.Equal(t, NotificationTally{Found: 2, Sent: 1, Skipped: 1}, tally)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "🏆 Ranked is a Top 2 Winner!", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Top 2 Winner")
	assert.Contains(t, sent[0].HTML, "premium launch")
}

func TestLaunchNotifier_DisabledEmailCountsAsFailed(t *testing.T) {
	users := newFakeUserRepo()
	u := users.add("a@x.io", "")

	tally := newTestNotifier(users, services.DisabledEmailSender{}, 1).
		SendLaunchReminders(context.Background(), []*models.Project{{ID: 1, CreatedBy: &u.ID}})

	assert.Equal(t, NotificationTally{Found: 1, Failed: 1}, tally)
}
