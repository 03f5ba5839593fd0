package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openlaunch/open-launch/app/dto"
	businessflow "github.com/openlaunch/open-launch/business_flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu       sync.Mutex
	triggers []string
	err      error
}

func (r *recordingRunner) RunDailyTasks(ctx context.Context) (*dto.DailyTasksReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, businessflow.TriggerFrom(ctx))
	if r.err != nil {
		return nil, r.err
	}
	return &dto.DailyTasksReport{LaunchUpdates: dto.LaunchUpdatesReport{ScheduledToOngoing: 2}}, nil
}

func TestNewDailyScheduler_Schedule(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	s, err := NewDailyScheduler(&recordingRunner{}, "", berlin, 0, nil)
	require.NoError(t, err)

	// 23:30 UTC on June 1 is 01:30 in Berlin, past today's 00:05
	next := s.Next(time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC))
	assert.True(t, time.Date(2025, 6, 3, 0, 5, 0, 0, berlin).Equal(next), next.String())

	utc, err := NewDailyScheduler(&recordingRunner{}, "0 1 * * *", nil, 0, nil)
	require.NoError(t, err)
	next = utc.Next(time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC))
	assert.True(t, time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC).Equal(next), next.String())

	_, err = NewDailyScheduler(&recordingRunner{}, "every day", nil, 0, nil)
	assert.Error(t, err)
}

func TestDailyScheduler_RunOnce(t *testing.T) {
	var buf bytes.Buffer
	runner := &recordingRunner{}
	s, err := NewDailyScheduler(runner, DefaultDailySchedule, time.UTC, time.Minute, NewSchedulerLogger(&buf))
	require.NoError(t, err)

	s.runOnce(context.Background())
	assert.Equal(t, []string{businessflow.TriggerScheduler}, runner.triggers)
	assert.Contains(t, buf.String(), "ongoing=2")

	runner.err = businessflow.ErrDailyTasksAlreadyRunning
	s.runOnce(context.Background())
	assert.Contains(t, buf.String(), "already in progress")

	runner.err = errors.New("db down")
	s.runOnce(context.Background())
	assert.Contains(t, buf.String(), "db down")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.runOnce(ctx)
	assert.Len(t, runner.triggers, 3)
}

func TestDailyScheduler_StartStop(t *testing.T) {
	s, err := NewDailyScheduler(&recordingRunner{}, "@yearly", time.UTC, time.Minute, NewSchedulerLogger(&bytes.Buffer{}))
	require.NoError(t, err)

	stop := s.Start(context.Background())
	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return")
	}
}
