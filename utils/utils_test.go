package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(now, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(now, nil))

	// 23:30 in UTC is already the next day in Tokyo
	tokyo := time.FixedZone("JST", 9*3600)
	late := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, tokyo), StartOfDay(late, tokyo))
}

func TestAddDays(t *testing.T) {
	day := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), AddDays(day, 1))
	assert.Equal(t, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), AddDays(day, -1))
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2026-05-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDay("05/01/2026", time.UTC)
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My AI Tool", "my-ai-tool"},
		{"  GPT -- Helper!! ", "gpt-helper"},
		{"Ünïcode Näme 2", "n-code-n-me-2"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder(""))
	assert.True(t, IsPlaceholder("   "))
	assert.True(t, IsPlaceholder("re_your_resend_api_key"))
	assert.True(t, IsPlaceholder("your_stripe_secret"))
	assert.False(t, IsPlaceholder("re_live_123"))
}
