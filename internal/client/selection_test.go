package client

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/intelliapply/internal/models"
)

func loadedMirror(t *testing.T, rec *recorder, jobs ...models.Job) *Mirror {
	t.Helper()
	m := NewMirror(&fakeSource{lists: [][]models.Job{jobs}}, rec)
	require.NoError(t, m.Load(context.Background()))
	return m
}

func TestSelection_ToggleTwiceIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	sel := NewSelection(NewMirror(&fakeSource{}, nil), &fakeActions{}, activeID(""), nil)

	for i := 0; i < 10; i++ {
		sel.Toggle(int64(rng.Intn(50)))
	}
	before := sel.IDs()

	id := int64(rng.Intn(50))
	sel.Toggle(id)
	sel.Toggle(id)

	assert.Equal(t, before, sel.IDs())

	empty := NewSelection(NewMirror(&fakeSource{}, nil), &fakeActions{}, activeID(""), nil)
	empty.Toggle(5)
	empty.Toggle(5)
	assert.Zero(t, empty.Len())
}

func TestSelection_FilterChangeClears(t *testing.T) {
	m := NewMirror(&fakeSource{}, nil)
	sel := NewSelection(m, &fakeActions{}, activeID(""), nil)
	sel.Toggle(1)
	sel.Toggle(2)

	m.FilterChanged()

	assert.Zero(t, sel.Len())
}

func TestSelection_BulkDeleteEmptyMakesNoCall(t *testing.T) {
	rec := &recorder{}
	actions := &fakeActions{}
	sel := NewSelection(NewMirror(&fakeSource{}, rec), actions, activeID("p"), rec)

	require.NoError(t, sel.BulkDelete(context.Background()))

	assert.Empty(t, actions.deleteCalls)
	assert.Equal(t, []Notice{{Level: LevelWarning, Message: "No jobs selected."}}, rec.all())
}

func TestSelection_BulkDeleteSuccess(t *testing.T) {
	rec := &recorder{}
	m := loadedMirror(t, rec, job(1, "A", 0), job(2, "B", time.Hour), job(3, "C", 2*time.Hour))
	actions := &fakeActions{}
	sel := NewSelection(m, actions, activeID("p"), rec)
	sel.Toggle(3)
	sel.Toggle(1)
	require.True(t, m.SelectDetail(1))

	require.NoError(t, sel.BulkDelete(context.Background()))

	assert.Equal(t, [][]int64{{1, 3}}, actions.deleteCalls)
	assert.Equal(t, []int64{2}, ids(m.Jobs()))
	assert.Nil(t, m.Detail())
	assert.Zero(t, sel.Len())
	assert.Equal(t, []string{"Selected jobs deleted."}, rec.messages(LevelSuccess))
}

func TestSelection_BulkDeleteFailureKeepsEverything(t *testing.T) {
	rec := &recorder{}
	m := loadedMirror(t, rec, job(1, "A", 0), job(2, "B", time.Hour))
	actions := &fakeActions{deleteErr: &APIError{Status: 500, Message: "database is down"}}
	sel := NewSelection(m, actions, activeID("p"), rec)
	sel.Toggle(1)

	err := sel.BulkDelete(context.Background())

	require.Error(t, err)
	assert.Equal(t, []int64{1, 2}, ids(m.Jobs()))
	assert.Equal(t, []int64{1}, sel.IDs())
	assert.Equal(t, []string{"Error deleting selected jobs: database is down"}, rec.messages(LevelError))
}

func TestSelection_BulkAnalyzeNeedsProfile(t *testing.T) {
	rec := &recorder{}
	actions := &fakeActions{}
	sel := NewSelection(NewMirror(&fakeSource{}, rec), actions, activeID(""), rec)

	withDescription := job(1, "A", 0)
	withDescription.Description = strPtr("Write Go.")
	err := sel.BulkAnalyze(context.Background(), []models.Job{withDescription})

	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.Empty(t, actions.analyzeIDs)
	assert.Equal(t, []string{"Please select an active profile first."}, rec.messages(LevelError))
}

func TestSelection_BulkAnalyzeAllRatedMakesNoCall(t *testing.T) {
	rec := &recorder{}
	actions := &fakeActions{}
	sel := NewSelection(NewMirror(&fakeSource{}, rec), actions, activeID("p"), rec)

	rated := job(1, "A", 0)
	rated.Description = strPtr("Write Go.")
	rated.GeminiRating = intPtr(7)
	bare := job(2, "B", 0)

	require.NoError(t, sel.BulkAnalyze(context.Background(), []models.Job{rated, bare}))

	assert.Empty(t, actions.analyzeIDs)
	assert.Equal(t, []Notice{{Level: LevelInfo, Message: "No new jobs with descriptions to analyze."}}, rec.all())
}

func TestSelection_BulkAnalyzeSendsEligibleOnly(t *testing.T) {
	rec := &recorder{}
	actions := &fakeActions{message: "Enqueued 1 jobs for analysis."}
	sel := NewSelection(NewMirror(&fakeSource{}, rec), actions, activeID("p"), rec)
	sel.Toggle(1)
	sel.Toggle(2)

	eligible := job(1, "A", 0)
	eligible.Description = strPtr("Write Go.")
	blank := job(2, "B", 0)
	blank.Description = strPtr("   ")

	require.NoError(t, sel.BulkAnalyze(context.Background(), []models.Job{eligible, blank}))

	assert.Equal(t, [][]int64{{1}}, actions.analyzeIDs)
	assert.Zero(t, sel.Len())
	assert.Equal(t, []string{"Enqueued 1 jobs for analysis."}, rec.messages(LevelSuccess))
}
