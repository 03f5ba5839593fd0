package businessflow

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/repository"
	"github.com/openlaunch/open-launch/utils"
	"github.com/xuri/excelize/v2"
)

const rankingSheetName = "Rankings"

// LaunchReportFlow exports a launch day's final standings for admins
type LaunchReportFlow interface {
	ExportDailyRankings(ctx context.Context, date string) (filename string, content []byte, err error)
}

type LaunchReportFlowImpl struct {
	projectRepo repository.ProjectRepository
	upvoteRepo  repository.UpvoteRepository
	userRepo    repository.UserRepository
	loc         *time.Location
}

func NewLaunchReportFlow(projectRepo repository.ProjectRepository, upvoteRepo repository.UpvoteRepository, userRepo repository.UserRepository, loc *time.Location) LaunchReportFlow {
	if loc == nil {
		loc = time.UTC
	}
	return &LaunchReportFlowImpl{
		projectRepo: projectRepo,
		upvoteRepo:  upvoteRepo,
		userRepo:    userRepo,
		loc:         loc,
	}
}

type rankingRow struct {
	project *models.Project
	upvotes int64
	email   string
}

func (f *LaunchReportFlowImpl) ExportDailyRankings(ctx context.Context, date string) (string, []byte, error) {
	day, err := utils.ParseDay(date, f.loc)
	if err != nil {
		return "", nil, ErrInvalidDate
	}
	next := utils.AddDays(day, 1)
	launched := models.LaunchStatusLaunched

	projects, err := f.projectRepo.ByFilter(ctx, models.ProjectFilter{
		LaunchStatus: &launched,
		LaunchFrom:   &day,
		LaunchBefore: &next,
	}, "id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_LAUNCHES_FAILED", "Failed to fetch launched projects", err)
	}

	ids := make([]uint, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	counts := map[uint]int64{}
	if len(ids) > 0 {
		if counts, err = f.upvoteRepo.CountByProjects(ctx, ids); err != nil {
			return "", nil, NewBusinessError("FETCH_UPVOTES_FAILED", "Failed to count upvotes", err)
		}
	}

	emails := map[uint]string{}
	rows := make([]rankingRow, 0, len(projects))
	for _, p := range projects {
		row := rankingRow{project: p, upvotes: counts[p.ID]}
		if p.CreatedBy != nil {
			email, ok := emails[*p.CreatedBy]
			if !ok {
				if u, err := f.userRepo.ByID(ctx, *p.CreatedBy); err == nil && u != nil {
					email = u.Email
				}
				emails[*p.CreatedBy] = email
			}
			row.email = email
		}
		rows = append(rows, row)
	}
	sortRankingRows(rows)

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), rankingSheetName); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare sheet", err)
	}
	header := []string{"rank", "project", "slug", "upvotes", "launch_type", "creator_email", "launch_day"}
	_ = xl.SetSheetRow(rankingSheetName, "A1", &header)

	for ri, r := range rows {
		rank := ""
		if r.project.DailyRanking != nil {
			rank = strconv.Itoa(*r.project.DailyRanking)
		}
		record := []any{
			rank,
			r.project.Name,
			r.project.Slug,
			r.upvotes,
			string(r.project.LaunchType),
			r.email,
			day.Format(utils.DayLayout),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(rankingSheetName, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return fmt.Sprintf("rankings_%s.xlsx", day.Format(utils.DayLayout)), buf.Bytes(), nil
}

// sortRankingRows orders ranked projects first by rank, then the rest by upvotes
func sortRankingRows(rows []rankingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].project.DailyRanking, rows[j].project.DailyRanking
		switch {
		case ri != nil && rj != nil && *ri != *rj:
			return *ri < *rj
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		}
		return rows[i].upvotes > rows[j].upvotes
	})
}
