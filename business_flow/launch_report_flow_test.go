package businessflow

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLaunchReportFlow_ExportDailyRankings(t *testing.T) {
	ctx := context.Background()
	projects := newFakeProjectRepo()
	upvotes := newFakeUpvoteRepo()
	users := newFakeUserRepo()
	flow := NewLaunchReportFlow(projects, upvotes, users, time.UTC)

	owner := users.add("owner@example.com", "Owner")
	day := dayD.AddDate(0, 0, -1)

	second := projects.add(&models.Project{Name: "Second", Slug: "second", LaunchStatus: models.LaunchStatusLaunched, LaunchType: models.LaunchTypeFree, ScheduledLaunchDate: utils.ToPtr(day), DailyRanking: utils.ToPtr(2), CreatedBy: &owner.ID})
	first := projects.add(&models.Project{Name: "First", Slug: "first", LaunchStatus: models.LaunchStatusLaunched, LaunchType: models.LaunchTypePremium, ScheduledLaunchDate: utils.ToPtr(day), DailyRanking: utils.ToPtr(1)})
	projects.add(&models.Project{Name: "Unranked", Slug: "unranked", LaunchStatus: models.LaunchStatusLaunched, ScheduledLaunchDate: utils.ToPtr(day)})
	projects.add(&models.Project{Name: "Other day", LaunchStatus: models.LaunchStatusLaunched, ScheduledLaunchDate: utils.ToPtr(dayD)})
	upvotes.addVotes(first.ID, 9)
	upvotes.addVotes(second.ID, 4)

	name, content, err := flow.ExportDailyRankings(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "rankings_2025-06-01.xlsx", name)

	xl, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(rankingSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"rank", "project", "slug", "upvotes", "launch_type", "creator_email", "launch_day"}, rows[0])
	assert.Equal(t, "First", rows[1][1])
	assert.Equal(t, "9", rows[1][3])
	assert.Equal(t, "Second", rows[2][1])
	assert.Equal(t, "owner@example.com", rows[2][5])
	assert.Equal(t, "", rows[3][0])
	assert.Equal(t, "Unranked", rows[3][1])

	_, _, err = flow.ExportDailyRankings(ctx, "yesterday")
	assert.True(t, IsInvalidDate(err))
}
