package client

import (
	"context"
	"strings"

	"alfredoptarigan/intelliapply/internal/models"
)

type AssistantAPI interface {
	AnalyzeJob(ctx context.Context, jobID int64, profileID string, description *string) (string, error)
	TailorResume(ctx context.Context, profileID, jobDescription string) ([]string, error)
	CoverLetter(ctx context.Context, req models.AIRequest) (string, error)
	InterviewPrep(ctx context.Context, profileID, jobDescription string) (*models.InterviewPrep, error)
	OptimizedResume(ctx context.Context, profileID string, jobID int64) (string, error)
	ResumeFromText(ctx context.Context, req models.ResumeFromTextRequest) (string, error)
}

// Assistant runs the per-job AI features. Each feature has its own slot, so
// starting one never touches another's state.
type Assistant struct {
	api      AssistantAPI
	profiles ActiveProfile
	notifier Notifier

	Suggestions Slot[[]string]
	Letter      Slot[string]
	Prep        Slot[*models.InterviewPrep]
	Optimized   Slot[string]
	FromText    Slot[string]
}

func NewAssistant(api AssistantAPI, profiles ActiveProfile, notifier Notifier) *Assistant {
	return &Assistant{api: api, profiles: profiles, notifier: notifier}
}

// require checks the inputs shared by every feature and reports the first one
// missing.
func (a *Assistant) require(jobDescription *string) (string, error) {
	profileID := a.profiles.ActiveID()
	if profileID == "" {
		notify(a.notifier, LevelError, "Please select an active profile first.")
		return "", ErrPrecondition
	}
	if jobDescription != nil && strings.TrimSpace(*jobDescription) == "" {
		notify(a.notifier, LevelError, "Job description is missing.")
		return "", ErrPrecondition
	}
	return profileID, nil
}

// Analyze queues a fit analysis for job. A description pasted by the user is
// saved with it when the job has none.
func (a *Assistant) Analyze(ctx context.Context, job models.Job, description string) error {
	profileID := a.profiles.ActiveID()
	if profileID == "" {
		notify(a.notifier, LevelError, "Could not start analysis: No profile selected.")
		return ErrPrecondition
	}

	var desc *string
	if strings.TrimSpace(description) != "" {
		desc = &description
	} else if !job.HasDescription() {
		notify(a.notifier, LevelError, "Job description is missing.")
		return ErrPrecondition
	}

	notify(a.notifier, LevelInfo, "Sending job to AI for analysis...")
	if _, err := a.api.AnalyzeJob(ctx, job.ID, profileID, desc); err != nil {
		notify(a.notifier, LevelError, "Error: "+messageOf(err))
		return err
	}
	return nil
}

func (a *Assistant) Tailor(ctx context.Context, jobDescription string) error {
	profileID, err := a.require(&jobDescription)
	if err != nil {
		return err
	}
	_, err = Run(ctx, &a.Suggestions, func(ctx context.Context) ([]string, error) {
		return a.api.TailorResume(ctx, profileID, jobDescription)
	})
	return err
}

// WriteCoverLetter drafts a letter for job. The description may differ from
// the stored one when the user edited it.
func (a *Assistant) WriteCoverLetter(ctx context.Context, job models.Job, jobDescription string) error {
	profileID, err := a.require(&jobDescription)
	if err != nil {
		return err
	}
	_, err = Run(ctx, &a.Letter, func(ctx context.Context) (string, error) {
		return a.api.CoverLetter(ctx, models.AIRequest{
			JobDescription: jobDescription,
			ProfileID:      profileID,
			Company:        job.Company,
			Title:          job.Title,
		})
	})
	return err
}

func (a *Assistant) PrepareInterview(ctx context.Context, jobDescription string) error {
	profileID, err := a.require(&jobDescription)
	if err != nil {
		return err
	}
	_, err = Run(ctx, &a.Prep, func(ctx context.Context) (*models.InterviewPrep, error) {
		return a.api.InterviewPrep(ctx, profileID, jobDescription)
	})
	return err
}

// OptimizeResume rewrites the active profile's resume for the stored job.
func (a *Assistant) OptimizeResume(ctx context.Context, jobID int64) error {
	profileID, err := a.require(nil)
	if err != nil {
		return err
	}
	_, err = Run(ctx, &a.Optimized, func(ctx context.Context) (string, error) {
		return a.api.OptimizedResume(ctx, profileID, jobID)
	})
	return err
}

// ResumeFromText writes a resume for a pasted job description. resumeContext
// is extra material the user wants drawn on and may be empty.
func (a *Assistant) ResumeFromText(ctx context.Context, jobDescription, resumeContext string) error {
	profileID, err := a.require(&jobDescription)
	if err != nil {
		return err
	}
	_, err = Run(ctx, &a.FromText, func(ctx context.Context) (string, error) {
		return a.api.ResumeFromText(ctx, models.ResumeFromTextRequest{
			ProfileID:      profileID,
			JobDescription: jobDescription,
			ResumeContext:  resumeContext,
		})
	})
	return err
}
