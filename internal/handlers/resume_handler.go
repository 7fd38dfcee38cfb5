package handlers

import (
	"errors"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/intelliapply/internal/document"
	"alfredoptarigan/intelliapply/internal/middleware"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/services"
)

const minJobDescriptionLength = 50

type ResumeHandler struct {
	ai       services.AIService
	renderer services.Renderer
	storage  services.StorageService
	parser   document.Parser
}

func NewResumeHandler(
	ai services.AIService,
	renderer services.Renderer,
	storage services.StorageService,
	parser document.Parser,
) *ResumeHandler {
	return &ResumeHandler{
		ai:       ai,
		renderer: renderer,
		storage:  storage,
		parser:   parser,
	}
}

// HandleIngest handles POST /resume/ingest
func (h *ResumeHandler) HandleIngest(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "A resume file is required.")
	}

	userID := middleware.UserID(c)
	filename, path, err := h.storage.SaveFile(userID, file, "resume")
	switch {
	case errors.Is(err, document.ErrFileTooLarge):
		return detail(c, fiber.StatusRequestEntityTooLarge, "File is too large. Maximum size is 5 MB.")
	case errors.Is(err, document.ErrUnsupportedType):
		return detail(c, fiber.StatusBadRequest, "Unsupported file type. Please upload a PDF or DOCX file.")
	case err != nil:
		return serverError(c, "Failed to store the uploaded file.", err)
	}

	text, err := h.parser.ExtractText(path)
	if err != nil {
		h.discard(userID, filename)
		if errors.Is(err, document.ErrNoText) {
			return detail(c, fiber.StatusUnprocessableEntity, "No readable text was found in the file.")
		}
		return serverError(c, "Failed to read the uploaded file.", err)
	}

	resume, err := h.ai.ParseResume(c.UserContext(), document.CleanText(text))
	if err != nil {
		h.discard(userID, filename)
		return serverError(c, "Parser failed.", err)
	}

	return c.JSON(models.IngestResponse{
		Status:  "success",
		Data:    resume,
		FileURL: "/api/v1/resume/files/" + filename,
	})
}

// HandleGetFile handles GET /resume/files/:name
func (h *ResumeHandler) HandleGetFile(c *fiber.Ctx) error {
	path, err := h.storage.GetFilePath(middleware.UserID(c), c.Params("name"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid file name.")
	}
	if _, err := os.Stat(path); err != nil {
		return detail(c, fiber.StatusNotFound, "File not found.")
	}
	return c.SendFile(path)
}

// HandleAnalyzeGaps handles POST /resume/analyze-gaps
func (h *ResumeHandler) HandleAnalyzeGaps(c *fiber.Ctx) error {
	var req models.GapAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if !longEnough(req.JobDescription) {
		return detail(c, fiber.StatusBadRequest, "Job description is too short.")
	}
	if req.ResumeData == nil {
		return detail(c, fiber.StatusBadRequest, "resume_data is required")
	}

	analysis, err := h.ai.AnalyzeGaps(c.UserContext(), req.ResumeData, req.JobDescription)
	if err != nil {
		return serverError(c, "Failed to analyze gaps.", err)
	}
	if analysis.Gaps == nil {
		analysis.Gaps = []models.Gap{}
	}
	return c.JSON(analysis)
}

// HandleGenerateTailored handles POST /resume/generate-tailored
func (h *ResumeHandler) HandleGenerateTailored(c *fiber.Ctx) error {
	var req models.TailoredResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if req.ResumeData == nil || strings.TrimSpace(req.JobDescription) == "" {
		return detail(c, fiber.StatusBadRequest, "resume_data and job_description are required")
	}

	tailored, err := h.ai.TailorResume(c.UserContext(), req.ResumeData, req.JobDescription, req.GapAnswers)
	if err != nil {
		return serverError(c, "Generation failed.", err)
	}
	return c.JSON(tailored)
}

// HandleRenderPDF handles POST /resume/render-pdf
func (h *ResumeHandler) HandleRenderPDF(c *fiber.Ctx) error {
	var resume models.ResumeSchema
	if err := c.BodyParser(&resume); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	pdfBytes, err := h.renderer.ResumePDF(c.UserContext(), &resume)
	if err != nil {
		return serverError(c, "Failed to render PDF.", err)
	}
	return sendPDF(c, pdfBytes)
}

// HandleCoverLetter handles POST /resume/generate-cover-letter
func (h *ResumeHandler) HandleCoverLetter(c *fiber.Ctx) error {
	var req models.ResumeCoverLetterRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if !longEnough(req.JobDescription) {
		return detail(c, fiber.StatusBadRequest, "Job description is too short.")
	}
	if req.ResumeData == nil {
		return detail(c, fiber.StatusBadRequest, "resume_data is required")
	}

	text, err := h.ai.ResumeCoverLetter(c.UserContext(), req.ResumeData, req.JobDescription)
	if err != nil {
		return serverError(c, "Failed to generate cover letter.", err)
	}
	return c.JSON(models.ResumeCoverLetterResponse{CoverLetterText: text})
}

// HandleRenderCoverLetter handles POST /resume/render-cover-letter-pdf
func (h *ResumeHandler) HandleRenderCoverLetter(c *fiber.Ctx) error {
	var req models.RenderCoverLetterRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if req.ResumeData == nil || strings.TrimSpace(req.CoverLetterText) == "" {
		return detail(c, fiber.StatusBadRequest, "resume_data and cover_letter_text are required")
	}

	pdfBytes, err := h.renderer.CoverLetterPDF(c.UserContext(), req.ResumeData, req.CoverLetterText)
	if err != nil {
		return serverError(c, "Failed to render cover letter PDF.", err)
	}
	return sendPDF(c, pdfBytes)
}

func (h *ResumeHandler) discard(userID, filename string) {
	if err := h.storage.DeleteFile(userID, filename); err != nil {
		log.Printf("⚠️  Failed to clean up %s: %v\n", filename, err)
	}
}

func longEnough(jobDescription string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(jobDescription)) >= minJobDescriptionLength
}

func sendPDF(c *fiber.Ctx, pdfBytes []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdfBytes)
}
