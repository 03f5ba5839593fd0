package businessflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openlaunch/open-launch/app/services"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/repository"
)

var errBoom = errors.New("boom")

type fakeProjectRepo struct {
	repository.ProjectRepository

	mu       sync.Mutex
	projects map[uint]*models.Project
	nextID   uint

	transitionErr error
	rankErrFor    map[uint]error
	rankCalls     int
	reaperCalls   int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uint]*models.Project), rankErrFor: make(map[uint]error), nextID: 1}
}

func (r *fakeProjectRepo) add(p *models.Project) *models.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
	}
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = strings.ToLower(p.Name)
	}
	r.projects[p.ID] = p
	return p
}

func (r *fakeProjectRepo) get(id uint) *models.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[id]
}

func (r *fakeProjectRepo) sorted(match func(*models.Project) bool) []*models.Project {
	var out []*models.Project
	for _, p := range r.projects {
		if match(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func firstProject(ps []*models.Project) *models.Project {
	if len(ps) == 0 {
		return nil
	}
	return ps[0]
}

func inRange(d *time.Time, start, end time.Time) bool {
	return d != nil && !d.Before(start) && d.Before(end)
}

func (r *fakeProjectRepo) TransitionStatus(_ context.Context, from, to models.LaunchStatus, start, end, now time.Time) ([]models.ProjectSummary, error) {
	if r.transitionErr != nil {
		return nil, r.transitionErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProjectSummary
	for _, p := range r.sorted(func(p *models.Project) bool {
		return p.LaunchStatus == from && inRange(p.ScheduledLaunchDate, start, end)
	}) {
		orig := r.projects[p.ID]
		orig.LaunchStatus = to
		orig.UpdatedAt = now
		out = append(out, models.ProjectSummary{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

func (r *fakeProjectRepo) SetDailyRanking(_ context.Context, id uint, rank int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rankCalls++
	if err := r.rankErrFor[id]; err != nil {
		return err
	}
	p, ok := r.projects[id]
	if !ok {
		return errors.New("not found")
	}
	p.DailyRanking = &rank
	p.UpdatedAt = now
	return nil
}

func (r *fakeProjectRepo) DeleteAbandonedPayments(_ context.Context, deadline time.Time) ([]models.ProjectSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reaperCalls++
	var out []models.ProjectSummary
	for _, p := range r.sorted(func(p *models.Project) bool {
		return p.LaunchStatus == models.LaunchStatusPaymentPending && !p.UpdatedAt.After(deadline)
	}) {
		delete(r.projects, p.ID)
		out = append(out, models.ProjectSummary{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

func (r *fakeProjectRepo) ListLaunching(_ context.Context, status models.LaunchStatus, start, end time.Time) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(p *models.Project) bool {
		return p.LaunchStatus == status && inRange(p.ScheduledLaunchDate, start, end)
	}), nil
}

func (r *fakeProjectRepo) ListRankedWinners(_ context.Context, start, end time.Time, maxRank int) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(p *models.Project) bool {
		return p.LaunchStatus == models.LaunchStatusLaunched && inRange(p.ScheduledLaunchDate, start, end) &&
			p.DailyRanking != nil && *p.DailyRanking >= 1 && *p.DailyRanking <= maxRank
	}), nil
}

func (r *fakeProjectRepo) ByID(_ context.Context, id uint) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProjectRepo) ByUUID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return firstProject(r.sorted(func(p *models.Project) bool { return p.UUID == id })), nil
}

func (r *fakeProjectRepo) BySlug(_ context.Context, slug string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return firstProject(r.sorted(func(p *models.Project) bool { return p.Slug == slug })), nil
}

func (r *fakeProjectRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	p, err := r.BySlug(ctx, slug)
	return p != nil, err
}

func (r *fakeProjectRepo) Save(_ context.Context, p *models.Project) error {
	r.add(p)
	return nil
}

type fakeUpvoteRepo struct {
	repository.UpvoteRepository

	mu       sync.Mutex
	votes    map[uint]map[uint]bool // project -> user
	countErr error
	countHit int
}

func newFakeUpvoteRepo() *fakeUpvoteRepo {
	return &fakeUpvoteRepo{votes: make(map[uint]map[uint]bool)}
}

// addVotes records n votes from synthetic users
func (r *fakeUpvoteRepo) addVotes(projectID uint, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.votes[projectID] == nil {
		r.votes[projectID] = make(map[uint]bool)
	}
	for i := 0; i < n; i++ {
		r.votes[projectID][uint(10000+len(r.votes[projectID]))] = true
	}
}

func (r *fakeUpvoteRepo) CountByProjects(_ context.Context, ids []uint) (map[uint]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countHit++
	if r.countErr != nil {
		return nil, r.countErr
	}
	out := make(map[uint]int64)
	for _, id := range ids {
		if n := len(r.votes[id]); n > 0 {
			out[id] = int64(n)
		}
	}
	return out, nil
}

func (r *fakeUpvoteRepo) ByProjectAndUser(_ context.Context, projectID, userID uint) (*models.Upvote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.votes[projectID][userID] {
		return &models.Upvote{ProjectID: projectID, UserID: userID}, nil
	}
	return nil, nil
}

func (r *fakeUpvoteRepo) Save(_ context.Context, u *models.Upvote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.votes[u.ProjectID] == nil {
		r.votes[u.ProjectID] = make(map[uint]bool)
	}
	if r.votes[u.ProjectID][u.UserID] {
		return errors.New("duplicate key value violates unique constraint")
	}
	r.votes[u.ProjectID][u.UserID] = true
	return nil
}

func (r *fakeUpvoteRepo) Delete(_ context.Context, projectID, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.votes[projectID], userID)
	return nil
}

func (r *fakeUpvoteRepo) Count(_ context.Context, f models.UpvoteFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ProjectID == nil {
		return 0, nil
	}
	return int64(len(r.votes[*f.ProjectID])), nil
}

type fakeUserRepo struct {
	repository.UserRepository

	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(email, name string) *models.User {
	u := &models.User{Email: email, UUID: uuid.New(), EmailVerified: true}
	if name != "" {
		u.Name = &name
	}
	_ = r.Save(context.Background(), u)
	return u
}

func (r *fakeUserRepo) ByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) ByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = hash
		return nil
	}
	return errors.New("not found")
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.EmailVerified = true
		u.EmailVerifiedAt = &at
		return nil
	}
	return errors.New("not found")
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type fakeRunRepo struct {
	repository.DailyTaskRunRepository

	mu   sync.Mutex
	runs []models.DailyTaskRun
}

func (r *fakeRunRepo) Save(_ context.Context, run *models.DailyTaskRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uint(len(r.runs) + 1)
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeRunRepo) Update(_ context.Context, run *models.DailyTaskRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID-1] = *run
	return nil
}

func (r *fakeRunRepo) Latest(_ context.Context) (*models.DailyTaskRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs) == 0 {
		return nil, nil
	}
	last := r.runs[len(r.runs)-1]
	return &last, nil
}

// recordingSender wraps the mock sender and keeps every attempt, including failures
type recordingSender struct {
	*services.MockEmailSender

	mu       sync.Mutex
	attempts []string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{MockEmailSender: services.NewMockEmailSender()}
}

func (s *recordingSender) Send(ctx context.Context, to, subject, html string) services.SendResult {
	s.mu.Lock()
	s.attempts = append(s.attempts, to)
	s.mu.Unlock()
	return s.MockEmailSender.Send(ctx, to, subject, html)
}

func (s *recordingSender) Attempts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.attempts...)
}

type fakeAnnouncer struct {
	calls    int
	launches []services.LaunchedProject
	err      error
}

func (a *fakeAnnouncer) AnnounceLaunches(_ context.Context, _ time.Time, launches []services.LaunchedProject) error {
	a.calls++
	a.launches = launches
	return a.err
}

func (r *fakeProjectRepo) ByFilter(_ context.Context, f models.ProjectFilter, _ string, _, _ int) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(p *models.Project) bool {
		if f.LaunchStatus != nil && p.LaunchStatus != *f.LaunchStatus {
			return false
		}
		if f.LaunchFrom != nil && (p.ScheduledLaunchDate == nil || p.ScheduledLaunchDate.Before(*f.LaunchFrom)) {
			return false
		}
		if f.LaunchBefore != nil && (p.ScheduledLaunchDate == nil || !p.ScheduledLaunchDate.Before(*f.LaunchBefore)) {
			return false
		}
		return true
	}), nil
}

type fakeCommentRepo struct {
	repository.CommentRepository

	mu       sync.Mutex
	comments []*models.Comment
	users    *fakeUserRepo
}

func (r *fakeCommentRepo) Save(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uint(len(r.comments) + 1)
	cp := *c
	r.comments = append(r.comments, &cp)
	return nil
}

func (r *fakeCommentRepo) ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]*models.Comment, error) {
	r.mu.Lock()
	var matched []*models.Comment
	for _, c := range r.comments {
		if c.ProjectID == projectID {
			cp := *c
			matched = append(matched, &cp)
		}
	}
	r.mu.Unlock()

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	for _, c := range matched {
		c.User, _ = r.users.ByID(ctx, c.UserID)
	}
	return matched, nil
}

func (r *fakeCommentRepo) Count(_ context.Context, f models.CommentFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.comments {
		if f.ProjectID == nil || c.ProjectID == *f.ProjectID {
			n++
		}
	}
	return n, nil
}
