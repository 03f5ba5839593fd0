package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalMailer_LaunchReminder(t *testing.T) {
	sender := NewMockEmailSender()
	mailer := NewTransactionalMailer(sender, "https://launch.example/", "Open Launch")

	res := mailer.SendLaunchReminder(context.Background(), Recipient{Email: "a@x.io"}, "Rocket", "rocket")
	require.True(t, res.Success)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.io", sent[0].To)
	assert.Equal(t, "🚀 Rocket is Live on Open Launch!", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Hi Creator,")
	assert.Contains(t, sent[0].HTML, "https://launch.example/projects/rocket")
}

func TestTransactionalMailer_WinnerBadge(t *testing.T) {
	tests := []struct {
		name        string
		recipient   Recipient
		rank        int
		premium     bool
		wantGreet   string
		wantBadge   string
		wantPremium bool
	}{
		{name: "free launch without name", recipient: Recipient{Email: "w@x.io"}, rank: 2, wantGreet: "Hi Winner", wantBadge: "Top 2 Winner"},
		{name: "premium launch", recipient: Recipient{Email: "w@x.io", Name: "Ada"}, rank: 1, premium: true, wantGreet: "Hi Ada", wantBadge: "Top 1 Winner", wantPremium: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewMockEmailSender()
			mailer := NewTransactionalMailer(sender, "https://launch.example", "Open Launch")

			res := mailer.SendWinnerBadge(context.Background(), tt.recipient, "Rocket", "rocket", tt.rank, tt.premium)
			require.True(t, res.Success)

			sent := sender.Sent()
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0].Subject, "is a Top")
			assert.Contains(t, sent[0].HTML, tt.wantGreet)
			assert.Contains(t, sent[0].HTML, tt.wantBadge)
			assert.Contains(t, sent[0].HTML, "https://launch.example/projects/rocket/badges")
			assert.Equal(t, tt.wantPremium, strings.Contains(sent[0].HTML, "premium launch"))
		})
	}
}

func TestTransactionalMailer_EscapesNames(t *testing.T) {
	sender := NewMockEmailSender()
	mailer := NewTransactionalMailer(sender, "https://launch.example", "")

	mailer.SendLaunchReminder(context.Background(), Recipient{Email: "a@x.io", Name: "<script>"}, "Rocket", "rocket")

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.NotContains(t, sent[0].HTML, "<script>")
	assert.Contains(t, sent[0].HTML, "&lt;script&gt;")
}

func TestEmailSenders_FailureIsReported(t *testing.T) {
	res := DisabledEmailSender{}.Send(context.Background(), "a@x.io", "s", "b")
	assert.False(t, res.Success)
	assert.Equal(t, "Email service not configured", res.Error)

	mock := NewMockEmailSender()
	mock.FailFor["bad@x.io"] = true
	assert.False(t, mock.Send(context.Background(), "bad@x.io", "s", "b").Success)
	assert.True(t, mock.Send(context.Background(), "ok@x.io", "s", "b").Success)
	assert.Len(t, mock.Sent(), 1)
}

func TestBadgeName(t *testing.T) {
	assert.Equal(t, "Top 1 Winner", BadgeName(1))
	assert.Equal(t, "Top 3 Winner", BadgeName(3))
	assert.Equal(t, "Winner", BadgeName(4))
}
