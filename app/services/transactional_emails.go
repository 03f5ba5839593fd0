package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/openlaunch/open-launch/utils"
)

// Recipient is the addressee of a transactional email
type Recipient struct {
	Email string
	Name  string
}

func (r Recipient) greeting(fallback string) string {
	if strings.TrimSpace(r.Name) == "" {
		return fallback
	}
	return r.Name
}

// TransactionalMailer renders and sends the product's fixed emails
type TransactionalMailer interface {
	SendLaunchReminder(ctx context.Context, to Recipient, projectName, projectSlug string) SendResult
	SendWinnerBadge(ctx context.Context, to Recipient, projectName, projectSlug string, rank int, premium bool) SendResult
	SendEmailVerification(ctx context.Context, to Recipient, token string) SendResult
	SendPasswordReset(ctx context.Context, to Recipient, token string) SendResult
}

type TransactionalMailerImpl struct {
	sender   EmailSender
	appURL   string
	siteName string
}

func NewTransactionalMailer(sender EmailSender, appURL, siteName string) *TransactionalMailerImpl {
	if siteName == "" {
		siteName = utils.DefaultSiteName
	}
	return &TransactionalMailerImpl{
		sender:   sender,
		appURL:   strings.TrimRight(appURL, "/"),
		siteName: siteName,
	}
}

const mailWrapperOpen = `<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">`

var (
	launchReminderTmpl = template.Must(template.New("launch_reminder").Parse(mailWrapperOpen + `
  <h1 style="font-size: 22px; color: #1a1a1a;">Hi {{.Name}},</h1>
  <p>Just a quick heads-up: your project, <strong>{{.Project}}</strong>, is launching today on {{.Site}}!</p>
  <p>We hope you have a great launch day!</p>
  <p>You can view your project live here: <a href="{{.URL}}">{{.URL}}</a></p>
  <p style="margin-top: 25px;">Best of luck!</p>
  <p>The {{.Site}} Team</p>
</div>`))

	winnerBadgeTmpl = template.Must(template.New("winner_badge").Parse(mailWrapperOpen + `
  <h1 style="font-size: 24px; color: #1a1a1a;">Hi {{.Name}} 👋</h1>
  <p><strong>{{.Project}}</strong> is a <strong>{{.Badge}}</strong> on {{.Site}}!</p>
  {{if .Premium}}<p>As a premium launch, your badge is also featured on the winners page for the week.</p>{{end}}
  <p style="text-align: center; margin: 25px 0;">
    <a href="{{.URL}}" style="background-color: #007bff; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px; font-size: 16px; display: inline-block;">🏆 Get Your Badge</a>
  </p>
  <p style="margin-top: 25px;">Congrats! 🎉<br>The {{.Site}} Team</p>
</div>`))

	verificationTmpl = template.Must(template.New("verification").Parse(mailWrapperOpen + `
  <h1 style="font-size: 22px; color: #1a1a1a;">Welcome to {{.Site}}, {{.Name}}!</h1>
  <p>Please confirm your email address to finish creating your account.</p>
  <p style="text-align: center; margin: 25px 0;">
    <a href="{{.URL}}" style="background-color: #007bff; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email</a>
  </p>
  <p>This link expires in 24 hours.</p>
</div>`))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(mailWrapperOpen + `
  <h1 style="font-size: 22px; color: #1a1a1a;">Hi {{.Name}},</h1>
  <p>We received a request to reset your {{.Site}} password.</p>
  <p style="text-align: center; margin: 25px 0;">
    <a href="{{.URL}}" style="background-color: #007bff; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
  </p>
  <p>This link expires in 1 hour. If you did not ask for a reset, you can ignore this email.</p>
</div>`))
)

type mailData struct {
	Name    string
	Project string
	Site    string
	URL     string
	Badge   string
	Premium bool
}

// BadgeName returns the badge label for a daily rank
func BadgeName(rank int) string {
	if rank >= 1 && rank <= 3 {
		return fmt.Sprintf("Top %d Winner", rank)
	}
	return "Winner"
}

func (m *TransactionalMailerImpl) SendLaunchReminder(ctx context.Context, to Recipient, projectName, projectSlug string) SendResult {
	subject := fmt.Sprintf("🚀 %s is Live on %s!", projectName, m.siteName)
	return m.render(ctx, to.Email, subject, launchReminderTmpl, mailData{
		Name:    to.greeting("Creator"),
		Project: projectName,
		Site:    m.siteName,
		URL:     fmt.Sprintf("%s/projects/%s", m.appURL, projectSlug),
	})
}

func (m *TransactionalMailerImpl) SendWinnerBadge(ctx context.Context, to Recipient, projectName, projectSlug string, rank int, premium bool) SendResult {
	subject := fmt.Sprintf("🏆 %s is a Top %d Winner!", projectName, rank)
	return m.render(ctx, to.Email, subject, winnerBadgeTmpl, mailData{
		Name:    to.greeting("Winner"),
		Project: projectName,
		Site:    m.siteName,
		URL:     fmt.Sprintf("%s/projects/%s/badges", m.appURL, projectSlug),
		Badge:   BadgeName(rank),
		Premium: premium,
	})
}

func (m *TransactionalMailerImpl) SendEmailVerification(ctx context.Context, to Recipient, token string) SendResult {
	subject := fmt.Sprintf("Verify your email for %s", m.siteName)
	return m.render(ctx, to.Email, subject, verificationTmpl, mailData{
		Name: to.greeting("there"),
		Site: m.siteName,
		URL:  fmt.Sprintf("%s/verify-email?token=%s", m.appURL, token),
	})
}

func (m *TransactionalMailerImpl) SendPasswordReset(ctx context.Context, to Recipient, token string) SendResult {
	subject := fmt.Sprintf("Reset your %s password", m.siteName)
	return m.render(ctx, to.Email, subject, passwordResetTmpl, mailData{
		Name: to.greeting("there"),
		Site: m.siteName,
		URL:  fmt.Sprintf("%s/reset-password?token=%s", m.appURL, token),
	})
}

func (m *TransactionalMailerImpl) render(ctx context.Context, to, subject string, tmpl *template.Template, data mailData) SendResult {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return SendResult{Success: false, Error: fmt.Sprintf("failed to render %s: %v", tmpl.Name(), err)}
	}
	return m.sender.Send(ctx, to, subject, buf.String())
}
