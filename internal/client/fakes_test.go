package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/feed"
	"alfredoptarigan/intelliapply/internal/history"
	"alfredoptarigan/intelliapply/internal/models"
)

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *recorder) messages(level Level) []string {
	var out []string
	for _, n := range r.all() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

// fakeSource serves a fixed job list and a feed the test writes into.
type fakeSource struct {
	mu      sync.Mutex
	lists   [][]models.Job
	listErr error
	listN   int
	opens   int
	feeds   []*io.PipeWriter
}

func (s *fakeSource) ListJobs(context.Context) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listN++
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.lists) == 0 {
		return nil, nil
	}
	// later calls see the next list; the last one repeats
	jobs := s.lists[0]
	if len(s.lists) > 1 {
		s.lists = s.lists[1:]
	}
	return append([]models.Job(nil), jobs...), nil
}

func (s *fakeSource) OpenFeed(ctx context.Context) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	s.mu.Lock()
	s.opens++
	s.feeds = append(s.feeds, pw)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		pw.CloseWithError(ctx.Err())
	}()
	return pr, nil
}

func (s *fakeSource) openCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

func (s *fakeSource) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listN
}

// push writes one change frame to the newest feed.
func (s *fakeSource) push(c feed.Change) error {
	s.mu.Lock()
	pw := s.feeds[len(s.feeds)-1]
	s.mu.Unlock()

	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(pw, "data: %s\n\n", raw)
	return err
}

func (s *fakeSource) drop() {
	s.mu.Lock()
	pw := s.feeds[len(s.feeds)-1]
	s.mu.Unlock()
	pw.Close()
}

type fakeActions struct {
	mu          sync.Mutex
	deleteCalls [][]int64
	deleteErr   error
	analyzeIDs  [][]int64
	analyzeErr  error
	message     string
}

func (a *fakeActions) DeleteJobs(_ context.Context, ids []int64) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleteCalls = append(a.deleteCalls, ids)
	if a.deleteErr != nil {
		return "", a.deleteErr
	}
	return fmt.Sprintf("Deleted %d job(s).", len(ids)), nil
}

func (a *fakeActions) BulkAnalyze(_ context.Context, _ string, ids []int64) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.analyzeIDs = append(a.analyzeIDs, ids)
	return a.message, a.analyzeErr
}

type activeID string

func (a activeID) ActiveID() string { return string(a) }

func job(id int64, title string, age time.Duration) models.Job {
	return models.Job{
		ID:        id,
		Title:     title,
		Company:   "Acme",
		Status:    models.JobStatusApplied,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-age),
	}
}

func change(t feed.ChangeType, newRow, oldRow any) feed.Change {
	c, err := feed.NewChange(t, "jobs", "user-1", newRow, oldRow)
	if err != nil {
		panic(err)
	}
	return c
}

func ids(jobs []models.Job) []int64 {
	out := make([]int64, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// fakeAssistant answers every AI call. When gate is set, TailorResume blocks
// until it is closed.
type fakeAssistant struct {
	mu       sync.Mutex
	calls    map[string]int
	gate     chan struct{}
	started  chan struct{}
	err      error
	analyzed []*string
	fromText []models.ResumeFromTextRequest
}

func (f *fakeAssistant) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAssistant) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAssistant) AnalyzeJob(_ context.Context, _ int64, _ string, description *string) (string, error) {
	f.count("analyze")
	f.mu.Lock()
	f.analyzed = append(f.analyzed, description)
	f.mu.Unlock()
	return "Job analysis has been queued.", f.err
}

func (f *fakeAssistant) TailorResume(ctx context.Context, _, _ string) ([]string, error) {
	f.count("tailor")
	if f.gate != nil {
		close(f.started)
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []string{"Lead with the Kafka migration."}, nil
}

func (f *fakeAssistant) CoverLetter(_ context.Context, req models.AIRequest) (string, error) {
	f.count("letter")
	if f.err != nil {
		return "", f.err
	}
	return "Dear " + req.Company + " team,", nil
}

func (f *fakeAssistant) InterviewPrep(context.Context, string, string) (*models.InterviewPrep, error) {
	f.count("prep")
	if f.err != nil {
		return nil, f.err
	}
	return &models.InterviewPrep{Technical: []string{"Explain channels."}}, nil
}

func (f *fakeAssistant) OptimizedResume(context.Context, string, int64) (string, error) {
	f.count("optimized")
	if f.err != nil {
		return "", f.err
	}
	return "# Ada Lovelace", nil
}

func (f *fakeAssistant) ResumeFromText(_ context.Context, req models.ResumeFromTextRequest) (string, error) {
	f.count("from-text")
	f.mu.Lock()
	f.fromText = append(f.fromText, req)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "# Ada Lovelace, Backend", nil
}

type fakeProfileAPI struct {
	listed  []models.Profile
	saveErr error
	deleted []string
}

func (f *fakeProfileAPI) ListProfiles(context.Context) ([]models.Profile, error) {
	return append([]models.Profile(nil), f.listed...), nil
}

func (f *fakeProfileAPI) SaveProfile(_ context.Context, p models.Profile) (*models.Profile, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return &p, nil
}

func (f *fakeProfileAPI) DeleteProfile(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeMaker plays the resume maker endpoints. When gate is set,
// GenerateTailored blocks until it is closed.
type fakeMaker struct {
	calls      map[string]int
	gapAnswers map[string]string
	gate       chan struct{}
	started    chan struct{}
	err        error
	scrapeErr  error
	scraped    []string
}

func (f *fakeMaker) count(name string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeMaker) IngestResume(_ context.Context, _ string, content io.Reader) (*models.IngestResponse, error) {
	f.count("ingest")
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(content); err != nil {
		return nil, err
	}
	return &models.IngestResponse{
		Status:  "success",
		Data:    &models.ResumeSchema{Summary: "Engineer"},
		FileURL: "/api/v1/resume/files/resume_1.pdf",
	}, nil
}

func (f *fakeMaker) AnalyzeGaps(context.Context, *models.ResumeSchema, string) (*models.GapAnalysis, error) {
	f.count("gaps")
	return &models.GapAnalysis{
		JobTitleDetected: "Backend Engineer",
		MatchScore:       70,
		Gaps: []models.Gap{
			{MissingSkill: "Kubernetes", Question: "Have you run clusters?"},
			{MissingSkill: "Kafka", Question: "Any streaming work?"},
		},
	}, nil
}

func (f *fakeMaker) GenerateTailored(ctx context.Context, resume *models.ResumeSchema, _ string, answers map[string]string) (*models.ResumeSchema, error) {
	f.count("generate")
	if f.gate != nil {
		close(f.started)
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.gapAnswers = answers
	out := *resume
	out.Summary = "Tailored engineer"
	return &out, nil
}

func (f *fakeMaker) RenderResumePDF(context.Context, *models.ResumeSchema) ([]byte, error) {
	f.count("render")
	return []byte("%PDF-resume"), nil
}

func (f *fakeMaker) ResumeCoverLetter(context.Context, *models.ResumeSchema, string) (string, error) {
	f.count("letter")
	return "Dear hiring team,", nil
}

func (f *fakeMaker) RenderCoverLetterPDF(context.Context, *models.ResumeSchema, string) ([]byte, error) {
	f.count("render-letter")
	return []byte("%PDF-letter"), nil
}

func (f *fakeMaker) ScrapePage(_ context.Context, url string) (*models.ScrapedJob, error) {
	f.count("scrape")
	f.scraped = append(f.scraped, url)
	if f.scrapeErr != nil {
		return nil, f.scrapeErr
	}
	return &models.ScrapedJob{
		Title:       "Platform Engineer",
		Company:     "Initech",
		Description: "Run Kubernetes for the data team.",
		JobURL:      url,
	}, nil
}

// fakeWriter plays the single-job endpoints.
type fakeWriter struct {
	mu        sync.Mutex
	calls     []string
	created   []models.ManualJobRequest
	statuses  map[int64]models.JobStatus
	details   map[int64]models.DetailsUpdateRequest
	deleted   [][]int64
	err       error
	onRequest func()
}

func (f *fakeWriter) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	hook := f.onRequest
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.err
}

func (f *fakeWriter) CreateManualJob(_ context.Context, req models.ManualJobRequest) (*models.Job, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &models.Job{ID: 99, Title: req.Title, Company: req.Company, JobURL: req.JobURL}, nil
}

func (f *fakeWriter) UpdateStatus(_ context.Context, jobID int64, status models.JobStatus) error {
	if err := f.record("status"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[int64]models.JobStatus{}
	}
	f.statuses[jobID] = status
	return nil
}

func (f *fakeWriter) UpdateDetails(_ context.Context, jobID int64, req models.DetailsUpdateRequest) error {
	if err := f.record("details"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.details == nil {
		f.details = map[int64]models.DetailsUpdateRequest{}
	}
	f.details[jobID] = req
	return nil
}

func (f *fakeWriter) DeleteJobs(_ context.Context, ids []int64) (string, error) {
	if err := f.record("delete"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids)
	return "Jobs deleted.", nil
}

func (f *fakeWriter) DeleteUntracked(context.Context) (string, error) {
	if err := f.record("delete-untracked"); err != nil {
		return "", err
	}
	return "Untracked jobs deleted.", nil
}

type fakeHistory struct {
	entries []history.Entry
	err     error
}

func (f *fakeHistory) Add(_ context.Context, e history.Entry) (history.Entry, error) {
	if f.err != nil {
		return history.Entry{}, f.err
	}
	f.entries = append(f.entries, e)
	return e, nil
}
