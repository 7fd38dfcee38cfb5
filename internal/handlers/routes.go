package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/intelliapply/internal/middleware"
)

// Routes groups the handlers served under /api/v1.
type Routes struct {
	Jobs     *JobHandler
	AI       *AIHandler
	Resume   *ResumeHandler
	Scrape   *ScrapeHandler
	Profiles *ProfileHandler
	Searches *SearchHandler
	Feed     *FeedHandler
}

func (r *Routes) Register(app *fiber.App, secret []byte) {
	api := app.Group("/api/v1", middleware.RequireAuth(secret))

	if h := r.Jobs; h != nil {
		api.Get("/jobs", h.HandleList)
		api.Post("/jobs/bulk-analyze", h.HandleBulkAnalyze)
		api.Post("/jobs/create-manual", h.HandleCreateManual)
		api.Post("/jobs/delete", h.HandleDelete)
		api.Post("/jobs/delete-all-untracked", h.HandleDeleteUntracked)
		api.Post("/jobs/:id/analyze", h.HandleAnalyze)
		api.Post("/jobs/:id/update-status", h.HandleUpdateStatus)
		api.Post("/jobs/:id/update-details", h.HandleUpdateDetails)
	}

	if h := r.AI; h != nil {
		api.Post("/ai/interview-prep", h.HandleInterviewPrep)
		api.Post("/ai/tailor-resume", h.HandleTailorResume)
		api.Post("/ai/generate-cover-letter", h.HandleCoverLetter)
		api.Post("/ai/generate-optimized-resume", h.HandleOptimizedResume)
		api.Post("/ai/generate-resume-from-text", h.HandleResumeFromText)
	}

	if h := r.Resume; h != nil {
		api.Post("/resume/ingest", h.HandleIngest)
		api.Get("/resume/files/:name", h.HandleGetFile)
		api.Post("/resume/analyze-gaps", h.HandleAnalyzeGaps)
		api.Post("/resume/generate-tailored", h.HandleGenerateTailored)
		api.Post("/resume/render-pdf", h.HandleRenderPDF)
		api.Post("/resume/generate-cover-letter", h.HandleCoverLetter)
		api.Post("/resume/render-cover-letter-pdf", h.HandleRenderCoverLetter)
	}

	if h := r.Scrape; h != nil {
		api.Post("/trigger-scrape", h.HandleTriggerScrape)
		api.Post("/scrape/page", h.HandleScrapePage)
	}

	if h := r.Profiles; h != nil {
		api.Get("/profiles", h.HandleList)
		api.Post("/profiles", h.HandleCreate)
		api.Put("/profiles/:id", h.HandleUpdate)
		api.Delete("/profiles/:id", h.HandleDelete)
	}

	if h := r.Searches; h != nil {
		api.Get("/searches", h.HandleList)
		api.Post("/searches", h.HandleCreate)
		api.Delete("/searches/:id", h.HandleDelete)
	}

	if h := r.Feed; h != nil {
		api.Get("/feed", h.HandleStream)
	}
}

// ErrorHandler renders unhandled errors in the same envelope as handler
// validation errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"detail": err.Error(),
		"code":   code,
	})
}
