package repository

import (
	"context"
	"testing"
	"time"

	"github.com/openlaunch/open-launch/models"
	testingutil "github.com/openlaunch/open-launch/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_TransitionStatus(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := NewProjectRepository(testDB.DB)
	ctx := context.Background()

	today := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	now := today.Add(8 * time.Hour)
	old := now.Add(-72 * time.Hour)

	dueMorning, err := fixtures.CreateTestProject("Due Morning", models.LaunchStatusScheduled, today.Add(9*time.Hour), nil, old)
	require.NoError(t, err)
	dueMidnight, err := fixtures.CreateTestProject("Due Midnight", models.LaunchStatusScheduled, today, nil, old)
	require.NoError(t, err)
	_, err = fixtures.CreateTestProject("Tomorrow", models.LaunchStatusScheduled, tomorrow, nil, old)
	require.NoError(t, err)
	_, err = fixtures.CreateTestProject("Already Ongoing", models.LaunchStatusOngoing, today, nil, old)
	require.NoError(t, err)

	moved, err := repo.TransitionStatus(ctx, models.LaunchStatusScheduled, models.LaunchStatusOngoing, today, tomorrow, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ProjectSummary{
		{ID: dueMorning.ID, Name: "Due Morning"},
		{ID: dueMidnight.ID, Name: "Due Midnight"},
	}, moved)

	reloaded, err := repo.ByID(ctx, dueMorning.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LaunchStatusOngoing, reloaded.LaunchStatus)
	assert.WithinDuration(t, now, reloaded.UpdatedAt, time.Second)

	t.Run("SecondRunIsNoop", func(t *testing.T) {
		again, err := repo.TransitionStatus(ctx, models.LaunchStatusScheduled, models.LaunchStatusOngoing, today, tomorrow, now)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("RejectsBackwardTransition", func(t *testing.T) {
		_, err := repo.TransitionStatus(ctx, models.LaunchStatusLaunched, models.LaunchStatusOngoing, today, tomorrow, now)
		assert.Error(t, err)
	})
}

func TestProjectRepository_DeleteAbandonedPayments(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := NewProjectRepository(testDB.DB)
	ctx := context.Background()

	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	deadline := now.Add(-24 * time.Hour)
	launch := now.AddDate(0, 0, 7)

	exactly, err := fixtures.CreateTestProject("Exactly 24h", models.LaunchStatusPaymentPending, launch, nil, deadline)
	require.NoError(t, err)
	fresh, err := fixtures.CreateTestProject("Fresh", models.LaunchStatusPaymentPending, launch, nil, now.Add(-(23*time.Hour + 59*time.Minute)))
	require.NoError(t, err)
	scheduled, err := fixtures.CreateTestProject("Paid", models.LaunchStatusScheduled, launch, nil, now.Add(-96*time.Hour))
	require.NoError(t, err)
	require.NoError(t, fixtures.AddUpvotes(exactly.ID, 2))

	deleted, err := repo.DeleteAbandonedPayments(ctx, deadline)
	require.NoError(t, err)
	assert.Equal(t, []models.ProjectSummary{{ID: exactly.ID, Name: "Exactly 24h"}}, deleted)

	gone, err := repo.ByID(ctx, exactly.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	for _, id := range []uint{fresh.ID, scheduled.ID} {
		p, err := repo.ByID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}

	var upvotes int64
	require.NoError(t, testDB.DB.Model(&models.Upvote{}).Where("project_id = ?", exactly.ID).Count(&upvotes).Error)
	assert.Zero(t, upvotes)
}

func TestProjectRepository_RankingQueries(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	projects := NewProjectRepository(testDB.DB)
	upvotes := NewUpvoteRepository(testDB.DB)
	ctx := context.Background()

	today := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	now := today.Add(time.Hour)

	a, err := fixtures.CreateTestProject("Alpha", models.LaunchStatusLaunched, yesterday, nil, now)
	require.NoError(t, err)
	b, err := fixtures.CreateTestProject("Beta", models.LaunchStatusLaunched, yesterday, nil, now)
	require.NoError(t, err)
	c, err := fixtures.CreateTestProject("Gamma", models.LaunchStatusLaunched, yesterday.AddDate(0, 0, -1), nil, now)
	require.NoError(t, err)

	require.NoError(t, fixtures.AddUpvotes(a.ID, 3))
	require.NoError(t, fixtures.AddUpvotes(c.ID, 1))

	counts, err := upvotes.CountByProjects(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{a.ID: 3}, counts)

	empty, err := upvotes.CountByProjects(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, projects.SetDailyRanking(ctx, a.ID, 1, now))
	require.NoError(t, projects.SetDailyRanking(ctx, c.ID, 1, now))
	assert.Error(t, projects.SetDailyRanking(ctx, 999999, 1, now))

	winners, err := projects.ListRankedWinners(ctx, yesterday, today, models.MaxDailyRank)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, a.ID, winners[0].ID)
	require.NotNil(t, winners[0].DailyRanking)
	assert.Equal(t, 1, *winners[0].DailyRanking)
}
