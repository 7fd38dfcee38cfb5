package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/middleware"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/queue"
	"alfredoptarigan/intelliapply/internal/repositories"
	"alfredoptarigan/intelliapply/internal/services"
)

var testSecret = []byte("handler-secret")

const testUser = "user-1"

func bearer() string {
	token, err := middleware.IssueToken(testSecret, testUser, "", time.Hour)
	if err != nil {
		panic(err)
	}
	return "Bearer " + token
}

func newTestApp(routes *Routes) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	routes.Register(app, testSecret)
	return app
}

type fakeJobRepo struct {
	repositories.JobRepository

	jobs          map[int64]*models.Job
	createErr     error
	created       []*models.Job
	detailUpdates []models.DetailsUpdateRequest
	statusUpdates []models.JobStatus
	deleted       []int64
	untracked     int
	batches       [][]models.ScrapedJob
	batchSearchID string
}

func newFakeJobRepo(jobs ...models.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: make(map[int64]*models.Job)}
	for i := range jobs {
		r.jobs[jobs[i].ID] = &jobs[i]
	}
	return r
}

func (r *fakeJobRepo) ListByUser(context.Context, string) ([]models.Job, error) {
	var out []models.Job
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, userID string, id int64) (*models.Job, error) {
	j, ok := r.jobs[id]
	if !ok || j.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return j, nil
}

func (r *fakeJobRepo) FindUnrated(_ context.Context, userID string, ids []int64) ([]models.Job, error) {
	var out []models.Job
	for _, id := range ids {
		if j, ok := r.jobs[id]; ok && j.UserID == userID && j.HasDescription() && !j.IsRated() {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) CreateManual(_ context.Context, job *models.Job) error {
	if r.createErr != nil {
		return r.createErr
	}
	job.ID = int64(len(r.jobs) + 100)
	r.created = append(r.created, job)
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) BatchSave(_ context.Context, _ string, searchID string, scraped []models.ScrapedJob) (int, error) {
	r.batches = append(r.batches, scraped)
	r.batchSearchID = searchID
	return len(scraped), nil
}

func (r *fakeJobRepo) UpdateStatus(_ context.Context, userID string, id int64, status models.JobStatus) error {
	if _, err := r.FindByID(context.Background(), userID, id); err != nil {
		return err
	}
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *fakeJobRepo) UpdateDetails(_ context.Context, userID string, id int64, req models.DetailsUpdateRequest) error {
	j, err := r.FindByID(context.Background(), userID, id)
	if err != nil {
		return err
	}
	if req.Description != nil {
		j.Description = req.Description
	}
	r.detailUpdates = append(r.detailUpdates, req)
	return nil
}

func (r *fakeJobRepo) DeleteMany(_ context.Context, _ string, ids []int64) (int, error) {
	r.deleted = append(r.deleted, ids...)
	return len(ids), nil
}

func (r *fakeJobRepo) DeleteUntracked(context.Context, string) (int, error) {
	return r.untracked, nil
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []queue.AnalysisTask
	err   error
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, task queue.AnalysisTask) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.tasks = append(e.tasks, task)
	return nil
}

type fakeProfileRepo struct {
	repositories.ProfileRepository

	profiles map[uuid.UUID]*models.Profile
	created  []*models.Profile
	updated  []*models.Profile
	deleted  []uuid.UUID
}

func newFakeProfileRepo(profiles ...models.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[uuid.UUID]*models.Profile)}
	for i := range profiles {
		r.profiles[profiles[i].ID] = &profiles[i]
	}
	return r
}

func (r *fakeProfileRepo) ListByUser(_ context.Context, userID string) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range r.profiles {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) FindByID(_ context.Context, userID string, id uuid.UUID) (*models.Profile, error) {
	p, ok := r.profiles[id]
	if !ok || p.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	r.created = append(r.created, p)
	r.profiles[p.ID] = p
	return nil
}

// Update writes the editable columns only, like the gorm repository.
func (r *fakeProfileRepo) Update(_ context.Context, p *models.Profile) error {
	stored, ok := r.profiles[p.ID]
	if !ok || stored.UserID != p.UserID {
		return repositories.ErrNotFound
	}
	r.updated = append(r.updated, p)
	next := *stored
	next.Name = p.Name
	next.ResumeContext = p.ResumeContext
	next.FullName = p.FullName
	next.Email = p.Email
	next.Phone = p.Phone
	next.LinkedInURL = p.LinkedInURL
	next.PortfolioURL = p.PortfolioURL
	next.Summary = p.Summary
	next.ExperienceLevel = p.ExperienceLevel
	next.ResumeFile = p.ResumeFile
	r.profiles[p.ID] = &next
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, _ string, id uuid.UUID) error {
	if _, ok := r.profiles[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.profiles, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeGrounder struct {
	mu      sync.Mutex
	indexed []uuid.UUID
	removed []string
}

func (g *fakeGrounder) IndexProfile(_ context.Context, p *models.Profile) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.indexed = append(g.indexed, p.ID)
	return nil
}

func (g *fakeGrounder) RemoveProfile(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removed = append(g.removed, id)
	return nil
}

func (g *fakeGrounder) Context(_ context.Context, p *models.Profile, _ string) string {
	return p.ResumeContext
}

func (g *fakeGrounder) indexedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.indexed)
}

// fakeAI embeds the interface so tests only stub what they call.
type fakeAI struct {
	services.AIService

	suggestions []string
	letter      string
	prep        *models.InterviewPrep
	optimized   string
	gotContext  string
	parsed      *models.ResumeSchema
	parsedText  string
	gaps        *models.GapAnalysis
	tailored    *models.ResumeSchema
	err         error
}

func (a *fakeAI) TailoringSuggestions(context.Context, *models.Profile, string) ([]string, error) {
	return a.suggestions, a.err
}

func (a *fakeAI) CoverLetter(context.Context, *models.Profile, string, string, string) (string, error) {
	return a.letter, a.err
}

func (a *fakeAI) InterviewPrep(context.Context, *models.Profile, string) (*models.InterviewPrep, error) {
	return a.prep, a.err
}

func (a *fakeAI) OptimizedResume(_ context.Context, _ *models.Profile, resumeContext, _ string) (string, error) {
	a.gotContext = resumeContext
	return a.optimized, a.err
}

func (a *fakeAI) ParseResume(_ context.Context, text string) (*models.ResumeSchema, error) {
	a.parsedText = text
	return a.parsed, a.err
}

func (a *fakeAI) AnalyzeGaps(context.Context, *models.ResumeSchema, string) (*models.GapAnalysis, error) {
	return a.gaps, a.err
}

func (a *fakeAI) TailorResume(context.Context, *models.ResumeSchema, string, map[string]string) (*models.ResumeSchema, error) {
	return a.tailored, a.err
}

func (a *fakeAI) ResumeCoverLetter(context.Context, *models.ResumeSchema, string) (string, error) {
	return a.letter, a.err
}

type fakeRenderer struct {
	letter string
}

func (r *fakeRenderer) ResumePDF(_ context.Context, resume *models.ResumeSchema) ([]byte, error) {
	return []byte("%PDF resume " + resume.PersonalInfo.Name), nil
}

func (r *fakeRenderer) CoverLetterPDF(_ context.Context, _ *models.ResumeSchema, letter string) ([]byte, error) {
	r.letter = letter
	return []byte("%PDF letter"), nil
}

type fakeParser struct {
	text string
	err  error
}

func (p fakeParser) ExtractText(string) (string, error) { return p.text, p.err }

type fakeScraper struct {
	jobs []models.ScrapedJob
	page *models.ScrapedJob
	err  error
}

func (s *fakeScraper) Scrape(context.Context, services.ScrapeQuery) ([]models.ScrapedJob, error) {
	return s.jobs, nil
}

func (s *fakeScraper) ScrapePage(context.Context, string) (*models.ScrapedJob, error) {
	return s.page, s.err
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
