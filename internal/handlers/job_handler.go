package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/intelliapply/internal/middleware"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/queue"
	"alfredoptarigan/intelliapply/internal/repositories"
)

// Enqueuer hands analysis work to the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.AnalysisTask) error
}

type JobHandler struct {
	jobRepo  repositories.JobRepository
	enqueuer Enqueuer
}

func NewJobHandler(jobRepo repositories.JobRepository, enqueuer Enqueuer) *JobHandler {
	return &JobHandler{
		jobRepo:  jobRepo,
		enqueuer: enqueuer,
	}
}

// HandleList handles GET /jobs
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	jobs, err := h.jobRepo.ListByUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return serverError(c, "Failed to load jobs.", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return c.JSON(jobs)
}

// HandleAnalyze handles POST /jobs/:id/analyze
func (h *JobHandler) HandleAnalyze(c *fiber.Ctx) error {
	id, valid := jobIDParam(c)
	if !valid {
		return detail(c, fiber.StatusBadRequest, "Invalid job id.")
	}

	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if req.ProfileID == "" {
		return detail(c, fiber.StatusBadRequest, "profile_id is required")
	}

	ctx := c.UserContext()
	userID := middleware.UserID(c)

	job, err := h.jobRepo.FindByID(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return detail(c, fiber.StatusNotFound, "Job not found or access denied.")
	}
	if err != nil {
		return serverError(c, "Failed to load job.", err)
	}

	// a pasted description is saved first so the worker has something to rate
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" && !job.HasDescription() {
		if err := h.jobRepo.UpdateDetails(ctx, userID, id, models.DetailsUpdateRequest{Description: req.Description}); err != nil {
			return serverError(c, "Failed to save description.", err)
		}
	}

	task := queue.AnalysisTask{JobID: id, ProfileID: req.ProfileID, UserID: userID}
	if err := h.enqueuer.Enqueue(ctx, task); err != nil {
		return serverError(c, "Job queue is not available.", err)
	}

	return ok(c, "On-demand analysis enqueued.")
}

// HandleBulkAnalyze handles POST /jobs/bulk-analyze
func (h *JobHandler) HandleBulkAnalyze(c *fiber.Ctx) error {
	var req models.BulkAnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if req.ProfileID == "" {
		return detail(c, fiber.StatusBadRequest, "profile_id is required")
	}

	ctx := c.UserContext()
	userID := middleware.UserID(c)

	eligible, err := h.jobRepo.FindUnrated(ctx, userID, req.JobIDs)
	if err != nil {
		return serverError(c, "Failed to load jobs.", err)
	}
	if len(eligible) == 0 {
		return ok(c, "No new jobs with descriptions to analyze.")
	}

	enqueued := 0
	for _, job := range eligible {
		task := queue.AnalysisTask{JobID: job.ID, ProfileID: req.ProfileID, UserID: userID}
		if err := h.enqueuer.Enqueue(ctx, task); err != nil {
			return serverError(c, "Job queue is not available.", err)
		}
		enqueued++
	}

	return ok(c, fmt.Sprintf("Enqueued %d jobs for analysis.", enqueued))
}

// HandleCreateManual handles POST /jobs/create-manual
func (h *JobHandler) HandleCreateManual(c *fiber.Ctx) error {
	var req models.ManualJobRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Company) == "" {
		return detail(c, fiber.StatusBadRequest, "Title and company are required.")
	}

	job := &models.Job{
		UserID:      middleware.UserID(c),
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		JobURL:      req.JobURL,
		Location:    req.Location,
		Description: req.Description,
		Status:      models.JobStatusApplied,
		IsTracked:   false,
	}

	err := h.jobRepo.CreateManual(c.UserContext(), job)
	if errors.Is(err, repositories.ErrDuplicate) {
		return detail(c, fiber.StatusConflict, "This job already exists in your library.")
	}
	if err != nil {
		return serverError(c, "Failed to save job.", err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleUpdateStatus handles POST /jobs/:id/update-status
func (h *JobHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	id, valid := jobIDParam(c)
	if !valid {
		return detail(c, fiber.StatusBadRequest, "Invalid job id.")
	}

	var req models.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if !req.Status.Valid() {
		return detail(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid status %q.", req.Status))
	}

	err := h.jobRepo.UpdateStatus(c.UserContext(), middleware.UserID(c), id, req.Status)
	if errors.Is(err, repositories.ErrNotFound) {
		return detail(c, fiber.StatusNotFound, "Job not found or access denied.")
	}
	if err != nil {
		return serverError(c, "Failed to update job status.", err)
	}

	return ok(c, "Job status updated.")
}

// HandleUpdateDetails handles POST /jobs/:id/update-details
func (h *JobHandler) HandleUpdateDetails(c *fiber.Ctx) error {
	id, valid := jobIDParam(c)
	if !valid {
		return detail(c, fiber.StatusBadRequest, "Invalid job id.")
	}

	var req models.DetailsUpdateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return detail(c, fiber.StatusBadRequest, "Invalid request payload")
		}
	}
	if req.Empty() {
		return detail(c, fiber.StatusBadRequest, "No data provided.")
	}
	if req.Status != nil && !req.Status.Valid() {
		return detail(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid status %q.", *req.Status))
	}

	err := h.jobRepo.UpdateDetails(c.UserContext(), middleware.UserID(c), id, req)
	if errors.Is(err, repositories.ErrNotFound) {
		return detail(c, fiber.StatusNotFound, "Job not found or access denied.")
	}
	if err != nil {
		return serverError(c, "Failed to update job details.", err)
	}

	return ok(c, "Job details updated.")
}

// HandleDelete handles POST /jobs/delete
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	var req models.DeleteJobsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return detail(c, fiber.StatusBadRequest, "Invalid request payload")
		}
	}
	if len(req.JobIDs) == 0 {
		return detail(c, fiber.StatusBadRequest, "No job IDs provided.")
	}

	n, err := h.jobRepo.DeleteMany(c.UserContext(), middleware.UserID(c), req.JobIDs)
	if err != nil {
		return serverError(c, "Failed to delete jobs.", err)
	}

	return ok(c, fmt.Sprintf("Deleted %d job(s).", n))
}

// HandleDeleteUntracked handles POST /jobs/delete-all-untracked
func (h *JobHandler) HandleDeleteUntracked(c *fiber.Ctx) error {
	n, err := h.jobRepo.DeleteUntracked(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return serverError(c, "Failed to delete untracked jobs.", err)
	}

	return ok(c, fmt.Sprintf("Deleted %d untracked job(s).", n))
}
