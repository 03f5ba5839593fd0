package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v3"
)

const DefaultCronTrustHeader = "X-Vercel-Cron-Secret"

// CronAuthConfig holds the credentials accepted by machine-triggered endpoints
type CronAuthConfig struct {
	// TrustHeader carries Secret when the platform scheduler calls us
	TrustHeader string
	Secret      string
	// APIKey is accepted as "Authorization: Bearer <key>"
	APIKey        string
	AllowInsecure bool
	Logger        *log.Logger
}

// CronAuth rejects a request with 401 unless it carries the cron secret in
// the trust header or the API key as a bearer token. Without any configured
// credential every request is rejected, unless AllowInsecure is set.
func CronAuth(cfg CronAuthConfig) fiber.Handler {
	if cfg.TrustHeader == "" {
		cfg.TrustHeader = DefaultCronTrustHeader
	}
	if cfg.Secret == "" && cfg.APIKey == "" && cfg.AllowInsecure && cfg.Logger != nil {
		cfg.Logger.Println("WARN cron endpoints accept unauthenticated requests (CRON_ALLOW_INSECURE=true)")
	}

	return func(c fiber.Ctx) error {
		if cfg.Secret == "" && cfg.APIKey == "" {
			if cfg.AllowInsecure {
				return c.Next()
			}
			cronAuthRejectedTotal.WithLabelValues("not_configured").Inc()
			return unauthorized(c, "Cron credentials are not configured", "CRON_UNAUTHORIZED")
		}

		if cfg.Secret != "" && secureEqual(c.Get(cfg.TrustHeader), cfg.Secret) {
			return c.Next()
		}
		if cfg.APIKey != "" {
			if token, ok := bearerToken(c); ok && secureEqual(token, cfg.APIKey) {
				return c.Next()
			}
		}

		cronAuthRejectedTotal.WithLabelValues("bad_credentials").Inc()
		if cfg.Logger != nil {
			cfg.Logger.Printf("rejected cron request path=%s ip=%s", c.Path(), c.IP())
		}
		return unauthorized(c, "Unauthorized", "CRON_UNAUTHORIZED")
	}
}

func secureEqual(got, want string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
