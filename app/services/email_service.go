package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/resend/resend-go/v2"
)

// SendResult reports the outcome of one delivery attempt. Senders never
// return errors; a failed attempt carries Success=false and a message.
type SendResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// EmailSender delivers a single HTML message
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) SendResult
}

// ResendEmailSender sends through the Resend API
type ResendEmailSender struct {
	client *resend.Client
	from   string
}

func NewResendEmailSender(apiKey, from string) *ResendEmailSender {
	return &ResendEmailSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendEmailSender) Send(ctx context.Context, to, subject, html string) SendResult {
	if strings.TrimSpace(to) == "" || !strings.Contains(to, "@") {
		return SendResult{Success: false, Error: "invalid recipient address"}
	}

	resp, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return SendResult{Success: false, Error: err.Error()}
	}
	return SendResult{Success: true, ID: resp.Id}
}

// DisabledEmailSender is used when no provider is configured
type DisabledEmailSender struct{}

func (DisabledEmailSender) Send(_ context.Context, to, subject, _ string) SendResult {
	log.Printf("email disabled, dropping message to %s: %s", to, subject)
	return SendResult{Success: false, Error: "Email service not configured"}
}

// SentEmail is a message captured by MockEmailSender
type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

// MockEmailSender records messages instead of sending them. FailFor makes
// delivery to the listed addresses fail.
type MockEmailSender struct {
	mu      sync.Mutex
	sent    []SentEmail
	FailFor map[string]bool
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{FailFor: make(map[string]bool)}
}

func (m *MockEmailSender) Send(_ context.Context, to, subject, html string) SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[to] {
		return SendResult{Success: false, Error: "mock delivery failure"}
	}
	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, HTML: html})
	log.Printf("Email sent to %s: %s", to, subject)
	return SendResult{Success: true, ID: "mock-" + to}
}

// Sent returns a copy of the captured messages
func (m *MockEmailSender) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
