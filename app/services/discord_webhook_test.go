package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordLaunchAnnouncer_BatchesEmbeds(t *testing.T) {
	var (
		mu       sync.Mutex
		payloads []DiscordWebhookRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p DiscordWebhookRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		mu.Lock()
		payloads = append(payloads, p)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	launches := make([]LaunchedProject, 12)
	for i := range launches {
		launches[i] = LaunchedProject{Name: fmt.Sprintf("P%d", i), Slug: fmt.Sprintf("p%d", i)}
	}

	a := NewDiscordLaunchAnnouncer(srv.URL, "https://launch.example", "Open Launch")
	err := a.AnnounceLaunches(context.Background(), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), launches)
	require.NoError(t, err)

	require.Len(t, payloads, 2)
	assert.Len(t, payloads[0].Embeds, 10)
	assert.Len(t, payloads[1].Embeds, 2)
	assert.Contains(t, payloads[0].Content, "12 projects")
	assert.Empty(t, payloads[1].Content)
	assert.Equal(t, "https://launch.example/projects/p0", payloads[0].Embeds[0].URL)
}

func TestDiscordLaunchAnnouncer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	a := NewDiscordLaunchAnnouncer(srv.URL, "https://launch.example", "Open Launch")
	err := a.AnnounceLaunches(context.Background(), time.Now(), []LaunchedProject{{Name: "A", Slug: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestDiscordLaunchAnnouncer_NothingToAnnounce(t *testing.T) {
	a := NewDiscordLaunchAnnouncer("http://127.0.0.1:1", "https://launch.example", "Open Launch")
	assert.NoError(t, a.AnnounceLaunches(context.Background(), time.Now(), nil))
}
