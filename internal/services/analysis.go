package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/queue"
	"alfredoptarigan/intelliapply/internal/repositories"
)

// ErrNoDescription means the job cannot be rated until a description is saved.
var ErrNoDescription = errors.New("job has no description")

type AnalysisService interface {
	AnalyzeJob(ctx context.Context, task queue.AnalysisTask) error
}

type analysisService struct {
	jobRepo     repositories.JobRepository
	profileRepo repositories.ProfileRepository
	ai          AIService
}

func NewAnalysisService(
	jobRepo repositories.JobRepository,
	profileRepo repositories.ProfileRepository,
	ai AIService,
) AnalysisService {
	return &analysisService{
		jobRepo:     jobRepo,
		profileRepo: profileRepo,
		ai:          ai,
	}
}

// AnalyzeJob rates one job against one profile and saves the result. The save
// publishes the UPDATE that clients turn into "AI Analysis complete".
func (s *analysisService) AnalyzeJob(ctx context.Context, task queue.AnalysisTask) error {
	log.Printf("🔍 Analyzing job %d with profile %s\n", task.JobID, task.ProfileID)

	job, err := s.jobRepo.FindByID(ctx, task.UserID, task.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %d: %w", task.JobID, err)
	}
	if !job.HasDescription() {
		return ErrNoDescription
	}

	profileID, err := uuid.Parse(task.ProfileID)
	if err != nil {
		return fmt.Errorf("invalid profile id %q: %w", task.ProfileID, err)
	}
	profile, err := s.profileRepo.FindByID(ctx, task.UserID, profileID)
	if err != nil {
		return fmt.Errorf("failed to load profile %s: %w", task.ProfileID, err)
	}

	analysis, err := s.ai.AnalyzeFit(ctx, profile, *job.Description)
	if err != nil {
		return err
	}

	if err := s.jobRepo.SaveAnalysis(ctx, task.UserID, task.JobID, task.ProfileID, *analysis); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	log.Printf("✅ Job %d rated %d/10\n", task.JobID, analysis.GeminiRating)
	return nil
}
