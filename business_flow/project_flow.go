package businessflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/repository"
	"github.com/openlaunch/open-launch/utils"
)

const maxSlugAttempts = 20

// ProjectFlow covers submission, browsing and voting
type ProjectFlow interface {
	SubmitProject(ctx context.Context, userID uint, req *dto.SubmitProjectRequest) (*dto.SubmitProjectResponse, error)
	GetProject(ctx context.Context, slug string) (*dto.ProjectDTO, error)
	ListLaunches(ctx context.Context, req *dto.ListLaunchesRequest) (*dto.ListLaunchesResponse, error)
	ToggleUpvote(ctx context.Context, userID uint, slug string) (*dto.UpvoteResponse, error)
}

type ProjectFlowImpl struct {
	projectRepo repository.ProjectRepository
	upvoteRepo  repository.UpvoteRepository
	loc         *time.Location
	clock       func() time.Time
}

func NewProjectFlow(projectRepo repository.ProjectRepository, upvoteRepo repository.UpvoteRepository, loc *time.Location) *ProjectFlowImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ProjectFlowImpl{
		projectRepo: projectRepo,
		upvoteRepo:  upvoteRepo,
		loc:         loc,
		clock:       utils.UTCNow,
	}
}

// SubmitProject queues a project for its launch day. Free launches are
// scheduled right away, paid ones wait for checkout in payment_pending.
func (pf *ProjectFlowImpl) SubmitProject(ctx context.Context, userID uint, req *dto.SubmitProjectRequest) (*dto.SubmitProjectResponse, error) {
	launchType := models.LaunchType(req.LaunchType)
	if !launchType.Valid() {
		return nil, ErrInvalidLaunchType
	}
	day, err := utils.ParseDay(req.LaunchDate, pf.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if day.Before(utils.StartOfDay(pf.clock(), pf.loc)) {
		return nil, ErrLaunchDateInPast
	}

	slug, err := pf.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	status := models.LaunchStatusScheduled
	if launchType.IsPremium() {
		status = models.LaunchStatusPaymentPending
	}

	categories := make(pq.StringArray, 0, len(req.Categories))
	for _, c := range req.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}

	project := &models.Project{
		UUID:                uuid.New(),
		Slug:                slug,
		Name:                strings.TrimSpace(req.Name),
		Description:         strings.TrimSpace(req.Description),
		WebsiteURL:          req.WebsiteURL,
		LogoURL:             req.LogoURL,
		ProductImageURL:     req.ProductImageURL,
		Categories:          categories,
		LaunchStatus:        status,
		LaunchType:          launchType,
		ScheduledLaunchDate: &day,
		CreatedBy:           &userID,
	}
	if err := pf.projectRepo.Save(ctx, project); err != nil {
		return nil, NewBusinessError("PROJECT_SUBMIT_FAILED", "Failed to save project", err)
	}

	return &dto.SubmitProjectResponse{
		Project:      ToProjectDTO(*project, 0),
		NeedsPayment: status == models.LaunchStatusPaymentPending,
	}, nil
}

func (pf *ProjectFlowImpl) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "project"
	}
	for i := 1; i <= maxSlugAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := pf.projectRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", NewBusinessError("PROJECT_SUBMIT_FAILED", "Failed to allocate slug", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func (pf *ProjectFlowImpl) GetProject(ctx context.Context, slug string) (*dto.ProjectDTO, error) {
	project, err := pf.projectRepo.BySlug(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("PROJECT_LOOKUP_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	counts, err := pf.upvoteRepo.CountByProjects(ctx, []uint{project.ID})
	if err != nil {
		return nil, NewBusinessError("PROJECT_LOOKUP_FAILED", "Failed to count upvotes", err)
	}
	out := ToProjectDTO(*project, counts[project.ID])
	return &out, nil
}

// ListLaunches returns the projects launching on a day, most upvoted first
func (pf *ProjectFlowImpl) ListLaunches(ctx context.Context, req *dto.ListLaunchesRequest) (*dto.ListLaunchesResponse, error) {
	day := utils.StartOfDay(pf.clock(), pf.loc)
	if req != nil && req.Date != "" {
		parsed, err := utils.ParseDay(req.Date, pf.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		day = parsed
	}
	next := utils.AddDays(day, 1)

	projects, err := pf.projectRepo.ByFilter(ctx, models.ProjectFilter{LaunchFrom: &day, LaunchBefore: &next}, "id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LAUNCHES_LIST_FAILED", "Failed to list launches", err)
	}

	visible := make([]*models.Project, 0, len(projects))
	ids := make([]uint, 0, len(projects))
	for _, p := range projects {
		if p.LaunchStatus == models.LaunchStatusPaymentPending {
			continue
		}
		visible = append(visible, p)
		ids = append(ids, p.ID)
	}

	counts := map[uint]int64{}
	if len(ids) > 0 {
		if counts, err = pf.upvoteRepo.CountByProjects(ctx, ids); err != nil {
			return nil, NewBusinessError("LAUNCHES_LIST_FAILED", "Failed to count upvotes", err)
		}
	}

	out := make([]dto.ProjectDTO, 0, len(visible))
	for _, p := range visible {
		out = append(out, ToProjectDTO(*p, counts[p.ID]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Upvotes > out[j].Upvotes })

	return &dto.ListLaunchesResponse{Date: day.Format(utils.DayLayout), Projects: out}, nil
}

// ToggleUpvote adds the user's vote, or removes it when already present.
// Only projects launching today accept votes.
func (pf *ProjectFlowImpl) ToggleUpvote(ctx context.Context, userID uint, slug string) (*dto.UpvoteResponse, error) {
	project, err := pf.projectRepo.BySlug(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("UPVOTE_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.LaunchStatus != models.LaunchStatusOngoing {
		return nil, ErrProjectNotOngoing
	}

	existing, err := pf.upvoteRepo.ByProjectAndUser(ctx, project.ID, userID)
	if err != nil {
		return nil, NewBusinessError("UPVOTE_FAILED", "Failed to load upvote", err)
	}

	upvoted := existing == nil
	if upvoted {
		err = pf.upvoteRepo.Save(ctx, &models.Upvote{ProjectID: project.ID, UserID: userID})
	} else {
		err = pf.upvoteRepo.Delete(ctx, project.ID, userID)
	}
	if err != nil {
		return nil, NewBusinessError("UPVOTE_FAILED", "Failed to toggle upvote", err)
	}

	count, err := pf.upvoteRepo.Count(ctx, models.UpvoteFilter{ProjectID: &project.ID})
	if err != nil {
		return nil, NewBusinessError("UPVOTE_FAILED", "Failed to count upvotes", err)
	}
	return &dto.UpvoteResponse{Upvoted: upvoted, Upvotes: count}, nil
}
