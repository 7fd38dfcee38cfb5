package client

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/intelliapply/internal/models"
)

const jd = "We need a Go engineer to own our ingestion pipeline and its on-call rotation."

func TestAssistant_RequiresActiveProfile(t *testing.T) {
	rec := &recorder{}
	api := &fakeAssistant{}
	a := NewAssistant(api, activeID(""), rec)
	ctx := context.Background()

	assert.ErrorIs(t, a.Tailor(ctx, jd), ErrPrecondition)
	assert.ErrorIs(t, a.PrepareInterview(ctx, jd), ErrPrecondition)
	assert.ErrorIs(t, a.OptimizeResume(ctx, 1), ErrPrecondition)

	assert.Zero(t, api.callCount("tailor")+api.callCount("prep")+api.callCount("optimized"))
	assert.Equal(t, Idle, a.Suggestions.State())
	assert.Len(t, rec.messages(LevelError), 3)
}

func TestAssistant_RequiresDescription(t *testing.T) {
	rec := &recorder{}
	api := &fakeAssistant{}
	a := NewAssistant(api, activeID("p"), rec)

	err := a.WriteCoverLetter(context.Background(), job(1, "Go Engineer", 0), "  ")

	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Zero(t, api.callCount("letter"))
	assert.Equal(t, []string{"Job description is missing."}, rec.messages(LevelError))
}

func TestAssistant_SlotsAreIndependent(t *testing.T) {
	api := &fakeAssistant{gate: make(chan struct{}), started: make(chan struct{})}
	a := NewAssistant(api, activeID("p"), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, a.Tailor(ctx, jd))
	}()
	<-api.started

	assert.True(t, a.Suggestions.InFlight())
	assert.ErrorIs(t, a.Tailor(ctx, jd), ErrInFlight)

	require.NoError(t, a.WriteCoverLetter(ctx, job(1, "Go Engineer", 0), jd))
	assert.Equal(t, "Dear Acme team,", a.Letter.Result())
	assert.True(t, a.Suggestions.InFlight())
	assert.Equal(t, Idle, a.Prep.State())

	close(api.gate)
	wg.Wait()

	assert.Equal(t, Done, a.Suggestions.State())
	assert.Equal(t, []string{"Lead with the Kafka migration."}, a.Suggestions.Result())
	assert.Equal(t, 1, api.callCount("tailor"))
}

func TestAssistant_FailureLandsInSlot(t *testing.T) {
	api := &fakeAssistant{err: &APIError{Status: 500, Message: "Failed to generate interview questions."}}
	a := NewAssistant(api, activeID("p"), nil)

	err := a.PrepareInterview(context.Background(), jd)

	require.Error(t, err)
	assert.Equal(t, Failed, a.Prep.State())
	assert.Equal(t, "Failed to generate interview questions.", a.Prep.Err())
	assert.Empty(t, a.Letter.Err())
}

func TestAssistant_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("no profile", func(t *testing.T) {
		rec := &recorder{}
		api := &fakeAssistant{}
		err := NewAssistant(api, activeID(""), rec).Analyze(ctx, job(1, "A", 0), jd)

		assert.ErrorIs(t, err, ErrPrecondition)
		assert.Zero(t, api.callCount("analyze"))
		assert.Equal(t, []string{"Could not start analysis: No profile selected."}, rec.messages(LevelError))
	})

	t.Run("no description anywhere", func(t *testing.T) {
		api := &fakeAssistant{}
		err := NewAssistant(api, activeID("p"), nil).Analyze(ctx, job(1, "A", 0), "")

		assert.ErrorIs(t, err, ErrPrecondition)
		assert.Zero(t, api.callCount("analyze"))
	})

	t.Run("stored description", func(t *testing.T) {
		rec := &recorder{}
		api := &fakeAssistant{}
		stored := job(1, "A", 0)
		stored.Description = strPtr(jd)

		require.NoError(t, NewAssistant(api, activeID("p"), rec).Analyze(ctx, stored, ""))

		require.Len(t, api.analyzed, 1)
		assert.Nil(t, api.analyzed[0])
		assert.Equal(t, []string{"Sending job to AI for analysis..."}, rec.messages(LevelInfo))
	})

	t.Run("pasted description is sent", func(t *testing.T) {
		api := &fakeAssistant{}
		require.NoError(t, NewAssistant(api, activeID("p"), nil).Analyze(ctx, job(1, "A", 0), jd))

		require.Len(t, api.analyzed, 1)
		require.NotNil(t, api.analyzed[0])
		assert.Equal(t, jd, *api.analyzed[0])
	})

	t.Run("backend error", func(t *testing.T) {
		rec := &recorder{}
		api := &fakeAssistant{err: &APIError{Status: 404, Message: "Job not found or access denied."}}
		err := NewAssistant(api, activeID("p"), rec).Analyze(ctx, job(1, "A", 0), jd)

		require.Error(t, err)
		assert.Equal(t, []string{"Error: Job not found or access denied."}, rec.messages(LevelError))
	})
}

func TestAssistant_OptimizeResume(t *testing.T) {
	api := &fakeAssistant{}
	a := NewAssistant(api, activeID("p"), nil)

	require.NoError(t, a.OptimizeResume(context.Background(), 7))

	assert.Equal(t, "# Ada Lovelace", a.Optimized.Result())
	assert.Equal(t, Done, a.Optimized.State())
}

func TestAssistant_ResumeFromText(t *testing.T) {
	api := &fakeAssistant{}
	a := NewAssistant(api, activeID("p-1"), nil)

	require.NoError(t, a.ResumeFromText(context.Background(), jd, "Led the billing rewrite."))

	assert.Equal(t, Done, a.FromText.State())
	assert.Equal(t, "# Ada Lovelace, Backend", a.FromText.Result())
	assert.Equal(t, []models.ResumeFromTextRequest{{
		ProfileID:      "p-1",
		JobDescription: jd,
		ResumeContext:  "Led the billing rewrite.",
	}}, api.fromText)
	assert.Equal(t, Idle, a.Optimized.State())
}

func TestAssistant_ResumeFromTextNeedsProfileAndDescription(t *testing.T) {
	rec := &recorder{}
	api := &fakeAssistant{}

	assert.ErrorIs(t, NewAssistant(api, activeID(""), rec).ResumeFromText(context.Background(), jd, ""), ErrPrecondition)
	assert.ErrorIs(t, NewAssistant(api, activeID("p"), rec).ResumeFromText(context.Background(), " ", ""), ErrPrecondition)

	assert.Zero(t, api.callCount("from-text"))
	assert.Equal(t, []string{
		"Please select an active profile first.",
		"Job description is missing.",
	}, rec.messages(LevelError))
}
