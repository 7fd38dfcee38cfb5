package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/middleware"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/repositories"
	"alfredoptarigan/intelliapply/internal/services"
)

type AIHandler struct {
	ai          services.AIService
	profileRepo repositories.ProfileRepository
	jobRepo     repositories.JobRepository
}

func NewAIHandler(
	ai services.AIService,
	profileRepo repositories.ProfileRepository,
	jobRepo repositories.JobRepository,
) *AIHandler {
	return &AIHandler{
		ai:          ai,
		profileRepo: profileRepo,
		jobRepo:     jobRepo,
	}
}

// loadProfile writes the error response itself and returns nil when the
// profile cannot be used.
func (h *AIHandler) loadProfile(c *fiber.Ctx, rawID string) (*models.Profile, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, detail(c, fiber.StatusBadRequest, "A valid profile_id is required.")
	}

	profile, err := h.profileRepo.FindByID(c.UserContext(), middleware.UserID(c), id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, detail(c, fiber.StatusNotFound, "Profile not found or access denied.")
	}
	if err != nil {
		return nil, serverError(c, "Database error.", err)
	}
	return profile, nil
}

func (h *AIHandler) parseAIRequest(c *fiber.Ctx) (*models.AIRequest, *models.Profile, error) {
	var req models.AIRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, nil, detail(c, fiber.StatusBadRequest, "job_description is required")
	}

	profile, err := h.loadProfile(c, req.ProfileID)
	if profile == nil {
		return nil, nil, err
	}
	return &req, profile, nil
}

// HandleInterviewPrep handles POST /ai/interview-prep
func (h *AIHandler) HandleInterviewPrep(c *fiber.Ctx) error {
	req, profile, err := h.parseAIRequest(c)
	if profile == nil {
		return err
	}

	prep, err := h.ai.InterviewPrep(c.UserContext(), profile, req.JobDescription)
	if err != nil {
		return serverError(c, "AI failed to generate prep data.", err)
	}
	return c.JSON(prep)
}

// HandleTailorResume handles POST /ai/tailor-resume
func (h *AIHandler) HandleTailorResume(c *fiber.Ctx) error {
	req, profile, err := h.parseAIRequest(c)
	if profile == nil {
		return err
	}

	suggestions, err := h.ai.TailoringSuggestions(c.UserContext(), profile, req.JobDescription)
	if err != nil {
		return serverError(c, "AI failed to generate suggestions.", err)
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return c.JSON(models.TailoringResponse{Suggestions: suggestions})
}

// HandleCoverLetter handles POST /ai/generate-cover-letter
func (h *AIHandler) HandleCoverLetter(c *fiber.Ctx) error {
	var req models.AIRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.Company) == "" || strings.TrimSpace(req.Title) == "" {
		return detail(c, fiber.StatusBadRequest, "Company and Title are required for cover letters.")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return detail(c, fiber.StatusBadRequest, "job_description is required")
	}

	profile, err := h.loadProfile(c, req.ProfileID)
	if profile == nil {
		return err
	}

	letter, err := h.ai.CoverLetter(c.UserContext(), profile, req.JobDescription, req.Company, req.Title)
	if err != nil {
		return serverError(c, "AI failed to generate cover letter.", err)
	}
	return c.JSON(models.CoverLetterResponse{CoverLetter: letter})
}

// HandleOptimizedResume handles POST /ai/generate-optimized-resume
func (h *AIHandler) HandleOptimizedResume(c *fiber.Ctx) error {
	var req models.OptimizedResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	profile, err := h.loadProfile(c, req.ProfileID)
	if profile == nil {
		return err
	}

	job, err := h.jobRepo.FindByID(c.UserContext(), middleware.UserID(c), req.JobID)
	if errors.Is(err, repositories.ErrNotFound) {
		return detail(c, fiber.StatusNotFound, "Job not found or access denied.")
	}
	if err != nil {
		return serverError(c, "Database error.", err)
	}
	if !job.HasDescription() {
		return detail(c, fiber.StatusNotFound, "Job description not found for this job.")
	}

	resume, err := h.ai.OptimizedResume(c.UserContext(), profile, "", *job.Description)
	if err != nil {
		return serverError(c, "AI failed to generate the optimized resume.", err)
	}
	return c.JSON(models.OptimizedResumeResponse{OptimizedResume: resume})
}

// HandleResumeFromText handles POST /ai/generate-resume-from-text
func (h *AIHandler) HandleResumeFromText(c *fiber.Ctx) error {
	var req models.ResumeFromTextRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.ResumeContext) == "" || strings.TrimSpace(req.JobDescription) == "" {
		return detail(c, fiber.StatusBadRequest, "Resume context and job description are required.")
	}

	profile, err := h.loadProfile(c, req.ProfileID)
	if profile == nil {
		return err
	}

	resume, err := h.ai.OptimizedResume(c.UserContext(), profile, req.ResumeContext, req.JobDescription)
	if err != nil {
		return serverError(c, "AI failed to generate the optimized resume.", err)
	}
	return c.JSON(models.OptimizedResumeResponse{OptimizedResume: resume})
}
