package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCronApp(cfg CronAuthConfig) *fiber.App {
	app := fiber.New()
	app.Get("/cron", CronAuth(cfg), func(c fiber.Ctx) error {
		return c.SendString("ran")
	})
	return app
}

func TestCronAuth(t *testing.T) {
	cases := []struct {
		name    string
		cfg     CronAuthConfig
		headers map[string]string
		want    int
	}{
		{
			name:    "trust header matches secret",
			cfg:     CronAuthConfig{Secret: "s3cret"},
			headers: map[string]string{"X-Vercel-Cron-Secret": "s3cret"},
			want:    http.StatusOK,
		},
		{
			name:    "custom trust header",
			cfg:     CronAuthConfig{TrustHeader: "X-Cron-Key", Secret: "s3cret"},
			headers: map[string]string{"X-Cron-Key": "s3cret"},
			want:    http.StatusOK,
		},
		{
			name:    "wrong secret",
			cfg:     CronAuthConfig{Secret: "s3cret"},
			headers: map[string]string{"X-Vercel-Cron-Secret": "nope"},
			want:    http.StatusUnauthorized,
		},
		{
			name:    "bearer api key",
			cfg:     CronAuthConfig{Secret: "s3cret", APIKey: "key-1"},
			headers: map[string]string{"Authorization": "Bearer key-1"},
			want:    http.StatusOK,
		},
		{
			name:    "bearer does not accept the header secret",
			cfg:     CronAuthConfig{Secret: "s3cret"},
			headers: map[string]string{"Authorization": "Bearer s3cret"},
			want:    http.StatusUnauthorized,
		},
		{
			name: "no credentials sent",
			cfg:  CronAuthConfig{APIKey: "key-1"},
			want: http.StatusUnauthorized,
		},
		{
			name: "nothing configured rejects",
			cfg:  CronAuthConfig{},
			want: http.StatusUnauthorized,
		},
		{
			name: "nothing configured but insecure allowed",
			cfg:  CronAuthConfig{AllowInsecure: true},
			want: http.StatusOK,
		},
		{
			name:    "insecure flag ignored once a secret exists",
			cfg:     CronAuthConfig{Secret: "s3cret", AllowInsecure: true},
			headers: map[string]string{"X-Vercel-Cron-Secret": ""},
			want:    http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newCronApp(tc.cfg)
			req := httptest.NewRequest(http.MethodGet, "/cron", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
