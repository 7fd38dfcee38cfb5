// Package client keeps a local view of the backend in sync and drives the AI
// workflows against it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/models"
)

// API is a thin typed wrapper over the backend's /api/v1 routes. Every request
// carries the bearer token.
type API struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPI(baseURL, token string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		token:      token,
		httpClient: httpClient,
	}
}

func (a *API) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	return req, nil
}

// send executes req and returns the body of a 2xx response.
func (a *API) send(req *http.Request) ([]byte, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: ErrorMessage(resp.StatusCode, body)}
	}
	return body, nil
}

func (a *API) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := a.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	raw, err := a.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// message runs a request whose response is a StatusResponse.
func (a *API) message(ctx context.Context, method, path string, in any) (string, error) {
	var resp models.StatusResponse
	if err := a.doJSON(ctx, method, path, in, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Jobs

func (a *API) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := a.doJSON(ctx, http.MethodGet, "/jobs", nil, &jobs)
	return jobs, err
}

func (a *API) AnalyzeJob(ctx context.Context, jobID int64, profileID string, description *string) (string, error) {
	return a.message(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/analyze", jobID), models.AnalyzeRequest{
		ProfileID:   profileID,
		Description: description,
	})
}

func (a *API) BulkAnalyze(ctx context.Context, profileID string, jobIDs []int64) (string, error) {
	return a.message(ctx, http.MethodPost, "/jobs/bulk-analyze", models.BulkAnalyzeRequest{
		ProfileID: profileID,
		JobIDs:    jobIDs,
	})
}

func (a *API) CreateManualJob(ctx context.Context, req models.ManualJobRequest) (*models.Job, error) {
	var job models.Job
	if err := a.doJSON(ctx, http.MethodPost, "/jobs/create-manual", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (a *API) UpdateStatus(ctx context.Context, jobID int64, status models.JobStatus) error {
	_, err := a.message(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/update-status", jobID), models.StatusUpdateRequest{Status: status})
	return err
}

func (a *API) UpdateDetails(ctx context.Context, jobID int64, req models.DetailsUpdateRequest) error {
	_, err := a.message(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/update-details", jobID), req)
	return err
}

func (a *API) DeleteJobs(ctx context.Context, jobIDs []int64) (string, error) {
	return a.message(ctx, http.MethodPost, "/jobs/delete", models.DeleteJobsRequest{JobIDs: jobIDs})
}

func (a *API) DeleteUntracked(ctx context.Context) (string, error) {
	return a.message(ctx, http.MethodPost, "/jobs/delete-all-untracked", nil)
}

// OpenFeed opens the change feed stream. The caller closes the body.
func (a *API) OpenFeed(ctx context.Context) (io.ReadCloser, error) {
	req, err := a.newRequest(ctx, http.MethodGet, "/feed", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open change feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Message: ErrorMessage(resp.StatusCode, body)}
	}
	return resp.Body, nil
}

// AI features

func (a *API) TailorResume(ctx context.Context, profileID, jobDescription string) ([]string, error) {
	var resp models.TailoringResponse
	err := a.doJSON(ctx, http.MethodPost, "/ai/tailor-resume", models.AIRequest{
		ProfileID:      profileID,
		JobDescription: jobDescription,
	}, &resp)
	return resp.Suggestions, err
}

func (a *API) CoverLetter(ctx context.Context, req models.AIRequest) (string, error) {
	var resp models.CoverLetterResponse
	err := a.doJSON(ctx, http.MethodPost, "/ai/generate-cover-letter", req, &resp)
	return resp.CoverLetter, err
}

func (a *API) InterviewPrep(ctx context.Context, profileID, jobDescription string) (*models.InterviewPrep, error) {
	var prep models.InterviewPrep
	if err := a.doJSON(ctx, http.MethodPost, "/ai/interview-prep", models.AIRequest{
		ProfileID:      profileID,
		JobDescription: jobDescription,
	}, &prep); err != nil {
		return nil, err
	}
	return &prep, nil
}

func (a *API) OptimizedResume(ctx context.Context, profileID string, jobID int64) (string, error) {
	var resp models.OptimizedResumeResponse
	err := a.doJSON(ctx, http.MethodPost, "/ai/generate-optimized-resume", models.OptimizedResumeRequest{
		JobID:     jobID,
		ProfileID: profileID,
	}, &resp)
	return resp.OptimizedResume, err
}

func (a *API) ResumeFromText(ctx context.Context, req models.ResumeFromTextRequest) (string, error) {
	var resp models.OptimizedResumeResponse
	err := a.doJSON(ctx, http.MethodPost, "/ai/generate-resume-from-text", req, &resp)
	return resp.OptimizedResume, err
}

// Resume maker

// IngestResume uploads a PDF or DOCX resume and returns its structured form.
func (a *API) IngestResume(ctx context.Context, filename string, content io.Reader) (*models.IngestResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to copy resume: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := a.newRequest(ctx, http.MethodPost, "/resume/ingest", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	raw, err := a.send(req)
	if err != nil {
		return nil, err
	}
	var resp models.IngestResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode ingest response: %w", err)
	}
	return &resp, nil
}

func (a *API) AnalyzeGaps(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (*models.GapAnalysis, error) {
	var analysis models.GapAnalysis
	if err := a.doJSON(ctx, http.MethodPost, "/resume/analyze-gaps", models.GapAnalysisRequest{
		ResumeData:     resume,
		JobDescription: jobDescription,
	}, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (a *API) GenerateTailored(ctx context.Context, resume *models.ResumeSchema, jobDescription string, answers map[string]string) (*models.ResumeSchema, error) {
	var tailored models.ResumeSchema
	if err := a.doJSON(ctx, http.MethodPost, "/resume/generate-tailored", models.TailoredResumeRequest{
		ResumeData:     resume,
		JobDescription: jobDescription,
		GapAnswers:     answers,
	}, &tailored); err != nil {
		return nil, err
	}
	return &tailored, nil
}

func (a *API) ResumeCoverLetter(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (string, error) {
	var resp models.ResumeCoverLetterResponse
	err := a.doJSON(ctx, http.MethodPost, "/resume/generate-cover-letter", models.ResumeCoverLetterRequest{
		ResumeData:     resume,
		JobDescription: jobDescription,
	}, &resp)
	return resp.CoverLetterText, err
}

func (a *API) RenderResumePDF(ctx context.Context, resume *models.ResumeSchema) ([]byte, error) {
	return a.pdf(ctx, "/resume/render-pdf", resume)
}

func (a *API) RenderCoverLetterPDF(ctx context.Context, resume *models.ResumeSchema, letter string) ([]byte, error) {
	return a.pdf(ctx, "/resume/render-cover-letter-pdf", models.RenderCoverLetterRequest{
		ResumeData:      resume,
		CoverLetterText: letter,
	})
}

func (a *API) pdf(ctx context.Context, path string, in any) ([]byte, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := a.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")
	return a.send(req)
}

// Profiles

func (a *API) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := a.doJSON(ctx, http.MethodGet, "/profiles", nil, &profiles)
	return profiles, err
}

// SaveProfile creates the profile when it has no id and updates it otherwise.
func (a *API) SaveProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	method, path := http.MethodPost, "/profiles"
	if p.ID != uuid.Nil {
		method, path = http.MethodPut, "/profiles/"+p.ID.String()
	}

	var saved models.Profile
	if err := a.doJSON(ctx, method, path, p, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (a *API) DeleteProfile(ctx context.Context, id string) error {
	_, err := a.message(ctx, http.MethodDelete, "/profiles/"+id, nil)
	return err
}

// ScrapePage extracts the posting at url, the way the extension reads the
// current tab.
func (a *API) ScrapePage(ctx context.Context, url string) (*models.ScrapedJob, error) {
	var job models.ScrapedJob
	if err := a.doJSON(ctx, http.MethodPost, "/scrape/page", models.PageScrapeRequest{URL: url}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
