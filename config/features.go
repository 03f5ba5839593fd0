package config

import "github.com/openlaunch/open-launch/utils"

// Features is the set of optional collaborators that are actually configured.
// Anything switched off is replaced by a no-op at wiring time.
type Features struct {
	Payments                   bool `json:"payments"`
	Email                      bool `json:"email"`
	MockEmail                  bool `json:"mock_email"`
	Captcha                    bool `json:"captcha"`
	Discord                    bool `json:"discord"`
	DiscordLaunchNotifications bool `json:"discord_launch_notifications"`
	Metrics                    bool `json:"metrics"`
}

// DetectFeatures derives the capability set from cfg
func DetectFeatures(cfg *ProductionConfig) Features {
	f := Features{
		Payments: !utils.IsPlaceholder(cfg.Stripe.SecretKey),
		Captcha:  cfg.Captcha.Enabled && cfg.Cache.Enabled,
		Discord:  !utils.IsPlaceholder(cfg.Discord.WebhookURL),
		Metrics:  cfg.Metrics.Enabled,
	}

	switch cfg.Email.Provider {
	case "mock":
		f.Email = true
		f.MockEmail = true
	default:
		f.Email = !utils.IsPlaceholder(cfg.Email.ResendAPIKey) && !utils.IsPlaceholder(cfg.Email.From)
	}

	f.DiscordLaunchNotifications = f.Discord && cfg.Discord.LaunchNotifications
	return f
}
