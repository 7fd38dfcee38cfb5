package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"alfredoptarigan/intelliapply/internal/models"
)

// ErrEmptyResponse is returned when the model answers with nothing usable.
var ErrEmptyResponse = errors.New("empty response from model")

// AIService backs the assistant and resume maker endpoints.
type AIService interface {
	AnalyzeFit(ctx context.Context, profile *models.Profile, jobDescription string) (*models.JobAnalysis, error)
	TailoringSuggestions(ctx context.Context, profile *models.Profile, jobDescription string) ([]string, error)
	CoverLetter(ctx context.Context, profile *models.Profile, jobDescription, company, title string) (string, error)
	InterviewPrep(ctx context.Context, profile *models.Profile, jobDescription string) (*models.InterviewPrep, error)
	OptimizedResume(ctx context.Context, profile *models.Profile, resumeContext, jobDescription string) (string, error)

	ParseResume(ctx context.Context, resumeText string) (*models.ResumeSchema, error)
	AnalyzeGaps(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (*models.GapAnalysis, error)
	TailorResume(ctx context.Context, resume *models.ResumeSchema, jobDescription string, gapAnswers map[string]string) (*models.ResumeSchema, error)
	ResumeCoverLetter(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (string, error)
}

type aiService struct {
	gemini        GeminiService
	grounder      Grounder
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewAIService(gemini GeminiService, grounder Grounder, maxRetries int) AIService {
	return &aiService{
		gemini:        gemini,
		grounder:      grounder,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// AnalyzeFit rates the job for the profile and clamps the rating to 0..10.
func (a *aiService) AnalyzeFit(ctx context.Context, profile *models.Profile, jobDescription string) (*models.JobAnalysis, error) {
	resumeContext := a.grounder.Context(ctx, profile, jobDescription)
	prompt := a.promptBuilder.BuildJobAnalysisPrompt(resumeContext, jobDescription, profile.ExperienceLevel)

	var analysis models.JobAnalysis
	if err := a.askJSON(ctx, prompt, 0.2, &analysis); err != nil {
		return nil, fmt.Errorf("failed to analyze job: %w", err)
	}

	analysis.GeminiRating = clampRating(analysis.GeminiRating)
	return &analysis, nil
}

func (a *aiService) TailoringSuggestions(ctx context.Context, profile *models.Profile, jobDescription string) ([]string, error) {
	resumeContext := a.grounder.Context(ctx, profile, jobDescription)

	var out models.TailoringResponse
	if err := a.askJSON(ctx, a.promptBuilder.BuildTailoringPrompt(resumeContext, jobDescription), 0.4, &out); err != nil {
		return nil, fmt.Errorf("failed to generate tailoring suggestions: %w", err)
	}
	return out.Suggestions, nil
}

func (a *aiService) CoverLetter(ctx context.Context, profile *models.Profile, jobDescription, company, title string) (string, error) {
	resumeContext := a.grounder.Context(ctx, profile, jobDescription)
	prompt := a.promptBuilder.BuildCoverLetterPrompt(resumeContext, jobDescription, company, title)

	var out models.CoverLetterResponse
	if err := a.askJSON(ctx, prompt, 0.6, &out); err != nil {
		return "", fmt.Errorf("failed to generate cover letter: %w", err)
	}
	if strings.TrimSpace(out.CoverLetter) == "" {
		return "", ErrEmptyResponse
	}
	return out.CoverLetter, nil
}

func (a *aiService) InterviewPrep(ctx context.Context, profile *models.Profile, jobDescription string) (*models.InterviewPrep, error) {
	resumeContext := a.grounder.Context(ctx, profile, jobDescription)

	var prep models.InterviewPrep
	if err := a.askJSON(ctx, a.promptBuilder.BuildInterviewPrepPrompt(resumeContext, jobDescription), 0.5, &prep); err != nil {
		return nil, fmt.Errorf("failed to generate interview questions: %w", err)
	}
	return &prep, nil
}

// OptimizedResume writes a markdown resume. An empty resumeContext falls back
// to the profile's grounding.
func (a *aiService) OptimizedResume(ctx context.Context, profile *models.Profile, resumeContext, jobDescription string) (string, error) {
	if strings.TrimSpace(resumeContext) == "" {
		resumeContext = a.grounder.Context(ctx, profile, jobDescription)
	}

	prompt := a.promptBuilder.BuildOptimizedResumePrompt(profile, resumeContext, jobDescription)
	text, err := a.gemini.GenerateTextWithRetry(ctx, prompt, 0.4, a.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to generate optimized resume: %w", err)
	}

	return stripCodeFence(text), nil
}

func (a *aiService) ParseResume(ctx context.Context, resumeText string) (*models.ResumeSchema, error) {
	var resume models.ResumeSchema
	if err := a.askJSON(ctx, a.promptBuilder.BuildResumeParsePrompt(resumeText), 0.1, &resume); err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}
	return &resume, nil
}

func (a *aiService) AnalyzeGaps(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (*models.GapAnalysis, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}

	var analysis models.GapAnalysis
	if err := a.askJSON(ctx, a.promptBuilder.BuildGapAnalysisPrompt(string(resumeJSON), jobDescription), 0.2, &analysis); err != nil {
		return nil, fmt.Errorf("failed to analyze gaps: %w", err)
	}
	return &analysis, nil
}

func (a *aiService) TailorResume(ctx context.Context, resume *models.ResumeSchema, jobDescription string, gapAnswers map[string]string) (*models.ResumeSchema, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}

	prompt := a.promptBuilder.BuildTailoredResumePrompt(string(resumeJSON), jobDescription, gapAnswers)

	var tailored models.ResumeSchema
	if err := a.askJSON(ctx, prompt, 0.3, &tailored); err != nil {
		return nil, fmt.Errorf("failed to tailor resume: %w", err)
	}
	preserveProjectLinks(resume, &tailored)
	return &tailored, nil
}

func (a *aiService) ResumeCoverLetter(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (string, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return "", fmt.Errorf("failed to encode resume: %w", err)
	}

	text, err := a.gemini.GenerateTextWithRetry(ctx, a.promptBuilder.BuildResumeCoverLetterPrompt(string(resumeJSON), jobDescription), 0.6, a.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to generate cover letter: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (a *aiService) askJSON(ctx context.Context, prompt string, temperature float32, target any) error {
	log.Printf("📝 Prompt length: %d characters", len(prompt))

	response, err := a.gemini.GenerateJSON(ctx, prompt, temperature)
	if err != nil {
		return err
	}
	if strings.TrimSpace(response) == "" {
		return ErrEmptyResponse
	}

	return parseJSONResponse(response, target)
}

func parseJSONResponse(response string, target any) error {
	if err := json.Unmarshal([]byte(extractJSON(response)), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w\nResponse: %s", err, response)
	}
	return nil
}

// extractJSON strips markdown fences and surrounding prose from a model reply.
func extractJSON(text string) string {
	text = stripCodeFence(text)

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	startArr := strings.Index(text, "[")
	endArr := strings.LastIndex(text, "]")
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}

func stripCodeFence(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```markdown", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func clampRating(r int) int {
	switch {
	case r < 0:
		return 0
	case r > 10:
		return 10
	}
	return r
}

// preserveProjectLinks restores project links the model dropped, matching
// projects by name.
func preserveProjectLinks(original, tailored *models.ResumeSchema) {
	if original == nil {
		return
	}

	links := make(map[string]models.Project, len(original.Projects))
	for _, p := range original.Projects {
		links[strings.ToLower(strings.TrimSpace(p.Name))] = p
	}

	for i := range tailored.Projects {
		orig, ok := links[strings.ToLower(strings.TrimSpace(tailored.Projects[i].Name))]
		if !ok {
			continue
		}
		if tailored.Projects[i].GitHubURL == "" {
			tailored.Projects[i].GitHubURL = orig.GitHubURL
		}
		if tailored.Projects[i].DemoURL == "" {
			tailored.Projects[i].DemoURL = orig.DemoURL
		}
	}
}
