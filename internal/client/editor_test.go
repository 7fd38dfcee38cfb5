package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/intelliapply/internal/models"
)

func tracked(j models.Job) models.Job {
	j.IsTracked = true
	return j
}

func TestEditor_SaveManual(t *testing.T) {
	rec := &recorder{}
	api := &fakeWriter{}
	e := NewEditor(api, NewMirror(&fakeSource{}, rec), nil, rec)

	got, err := e.SaveManual(context.Background(), models.ManualJobRequest{
		Title:   "SRE",
		Company: "Hooli",
		JobURL:  "https://hooli.example/jobs/7",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(99), got.ID)
	assert.Equal(t, "Hooli", api.created[0].Company)
	assert.Equal(t, []string{"Job saved successfully!"}, rec.messages(LevelSuccess))
}

func TestEditor_SaveManualFailureShowsServerMessage(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(&fakeWriter{err: &APIError{Status: 400, Message: "Title and company are required."}}, NewMirror(&fakeSource{}, rec), nil, rec)

	_, err := e.SaveManual(context.Background(), models.ManualJobRequest{})

	require.Error(t, err)
	assert.Equal(t, []string{"Title and company are required."}, rec.messages(LevelError))
	assert.Empty(t, rec.messages(LevelSuccess))
}

func TestEditor_Updates(t *testing.T) {
	rec := &recorder{}
	api := &fakeWriter{}
	e := NewEditor(api, NewMirror(&fakeSource{}, rec), nil, rec)
	ctx := context.Background()

	require.NoError(t, e.UpdateStatus(ctx, 4, models.JobStatusInterviewing))
	require.NoError(t, e.UpdateDetails(ctx, 4, models.DetailsUpdateRequest{Notes: strPtr("Call on Monday")}))

	assert.Equal(t, models.JobStatusInterviewing, api.statuses[4])
	assert.Equal(t, "Call on Monday", *api.details[4].Notes)
	assert.Nil(t, api.details[4].Status)
	assert.Equal(t, []string{"Job status updated!", "Job details updated!"}, rec.messages(LevelSuccess))

	api.err = errors.New("connection refused")
	assert.Error(t, e.UpdateStatus(ctx, 4, models.JobStatusRejected))
	assert.Error(t, e.UpdateDetails(ctx, 4, models.DetailsUpdateRequest{IsTracked: new(bool)}))
	assert.Equal(t, []string{
		"Error: connection refused",
		"Error saving details: connection refused",
	}, rec.messages(LevelError))
}

func TestEditor_DeleteClosesDetailBeforeTheRequest(t *testing.T) {
	rec := &recorder{}
	m := loadedMirror(t, rec, job(1, "Go Engineer", 0), job(2, "SRE", 1))
	require.True(t, m.SelectDetail(1))

	api := &fakeWriter{}
	var detailDuringRequest *models.Job
	api.onRequest = func() { detailDuringRequest = m.Detail() }
	e := NewEditor(api, m, nil, rec)

	require.NoError(t, e.Delete(context.Background(), 1))

	assert.Nil(t, detailDuringRequest)
	assert.Equal(t, [][]int64{{1}}, api.deleted)
	assert.Equal(t, []int64{2}, ids(m.Jobs()))
	assert.Equal(t, []string{"Deleting job..."}, rec.messages(LevelInfo))
	assert.Equal(t, []string{"Job successfully deleted."}, rec.messages(LevelSuccess))
}

func TestEditor_DeleteKeepsOtherDetailAndRowOnFailure(t *testing.T) {
	rec := &recorder{}
	m := loadedMirror(t, rec, job(1, "Go Engineer", 0), job(2, "SRE", 1))
	require.True(t, m.SelectDetail(2))
	e := NewEditor(&fakeWriter{err: errors.New("timeout")}, m, nil, rec)

	require.Error(t, e.Delete(context.Background(), 1))

	assert.Equal(t, []int64{1, 2}, ids(m.Jobs()))
	require.NotNil(t, m.Detail())
	assert.Equal(t, int64(2), m.Detail().ID)
	assert.Equal(t, []string{"Error deleting job: timeout"}, rec.messages(LevelError))
}

func TestEditor_DeleteUntracked(t *testing.T) {
	rec := &recorder{}
	m := loadedMirror(t, rec, job(1, "Go Engineer", 0), tracked(job(2, "SRE", 1)), job(3, "DBA", 2))
	sel := NewSelection(m, &fakeActions{}, activeID("p"), rec)
	sel.Toggle(2)
	require.True(t, m.SelectDetail(2))

	api := &fakeWriter{}
	var detailDuringRequest *models.Job
	api.onRequest = func() { detailDuringRequest = m.Detail() }
	e := NewEditor(api, m, sel, rec)

	require.NoError(t, e.DeleteUntracked(context.Background()))

	assert.NotNil(t, detailDuringRequest)
	assert.Nil(t, m.Detail())
	assert.Zero(t, sel.Len())
	assert.Equal(t, []int64{2}, ids(m.Jobs()))
	assert.Equal(t, []string{"Deleting all non-tracked jobs..."}, rec.messages(LevelInfo))
	assert.Equal(t, []string{"All non-tracked jobs deleted."}, rec.messages(LevelSuccess))
}

func TestEditor_DeleteUntrackedFailureKeepsState(t *testing.T) {
	rec := &recorder{}
	m := loadedMirror(t, rec, job(1, "Go Engineer", 0))
	sel := NewSelection(m, &fakeActions{}, activeID("p"), rec)
	sel.Toggle(1)
	require.True(t, m.SelectDetail(1))
	e := NewEditor(&fakeWriter{err: &APIError{Status: 500, Message: "database unavailable"}}, m, sel, rec)

	require.Error(t, e.DeleteUntracked(context.Background()))

	assert.NotNil(t, m.Detail())
	assert.Equal(t, 1, sel.Len())
	assert.Equal(t, []int64{1}, ids(m.Jobs()))
	assert.Equal(t, []string{"Error deleting jobs: database unavailable"}, rec.messages(LevelError))
}
