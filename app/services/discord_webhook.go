package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	URL         string                `json:"url,omitempty"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields,omitempty"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Content   string         `json:"content,omitempty"`
	Embeds    []DiscordEmbed `json:"embeds"`
}

const (
	ColorLaunch = 16753920 // #FFA500

	// discord rejects messages with more than 10 embeds
	maxEmbedsPerMessage = 10
)

// LaunchedProject is one entry of a launch announcement
type LaunchedProject struct {
	Name        string
	Slug        string
	Description string
}

// LaunchAnnouncer posts the day's launches to a community channel
type LaunchAnnouncer interface {
	AnnounceLaunches(ctx context.Context, day time.Time, launches []LaunchedProject) error
}

// NoopLaunchAnnouncer is wired when no webhook is configured
type NoopLaunchAnnouncer struct{}

func (NoopLaunchAnnouncer) AnnounceLaunches(context.Context, time.Time, []LaunchedProject) error {
	return nil
}

type DiscordLaunchAnnouncer struct {
	webhookURL string
	appURL     string
	siteName   string
	httpClient *http.Client
}

func NewDiscordLaunchAnnouncer(webhookURL, appURL, siteName string) *DiscordLaunchAnnouncer {
	return &DiscordLaunchAnnouncer{
		webhookURL: webhookURL,
		appURL:     strings.TrimRight(appURL, "/"),
		siteName:   siteName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordLaunchAnnouncer) AnnounceLaunches(ctx context.Context, day time.Time, launches []LaunchedProject) error {
	if len(launches) == 0 {
		return nil
	}

	embeds := make([]DiscordEmbed, 0, len(launches))
	for _, l := range launches {
		desc := l.Description
		if len(desc) > 200 {
			desc = desc[:197] + "..."
		}
		embeds = append(embeds, DiscordEmbed{
			Title:       "🚀 " + l.Name,
			Description: desc,
			URL:         fmt.Sprintf("%s/projects/%s", d.appURL, l.Slug),
			Color:       ColorLaunch,
			Timestamp:   day.Format(time.RFC3339),
		})
	}

	for start := 0; start < len(embeds); start += maxEmbedsPerMessage {
		end := min(start+maxEmbedsPerMessage, len(embeds))
		payload := DiscordWebhookRequest{
			Username: d.siteName,
			Embeds:   embeds[start:end],
		}
		if start == 0 {
			payload.Content = fmt.Sprintf("**%d projects are launching today on %s (%s)**", len(launches), d.siteName, day.Format("2006-01-02"))
		}
		if err := d.post(ctx, payload); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}
	return nil
}

func (d *DiscordLaunchAnnouncer) post(ctx context.Context, payload DiscordWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
