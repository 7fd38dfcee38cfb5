package client

import (
	"context"

	"alfredoptarigan/intelliapply/internal/models"
)

// JobWriter is the single-job side of the jobs endpoints.
type JobWriter interface {
	CreateManualJob(ctx context.Context, req models.ManualJobRequest) (*models.Job, error)
	UpdateStatus(ctx context.Context, jobID int64, status models.JobStatus) error
	UpdateDetails(ctx context.Context, jobID int64, req models.DetailsUpdateRequest) error
	DeleteJobs(ctx context.Context, ids []int64) (string, error)
	DeleteUntracked(ctx context.Context) (string, error)
}

// Editor creates, edits and deletes jobs one at a time. New and edited rows
// reach the mirror through the change feed; deleted rows leave it as soon as
// the backend confirms.
type Editor struct {
	api       JobWriter
	mirror    *Mirror
	selection *Selection
	notifier  Notifier
}

func NewEditor(api JobWriter, mirror *Mirror, selection *Selection, notifier Notifier) *Editor {
	return &Editor{api: api, mirror: mirror, selection: selection, notifier: notifier}
}

// SaveManual stores a job the user typed in.
func (e *Editor) SaveManual(ctx context.Context, req models.ManualJobRequest) (*models.Job, error) {
	job, err := e.api.CreateManualJob(ctx, req)
	if err != nil {
		notify(e.notifier, LevelError, messageOf(err))
		return nil, err
	}
	notify(e.notifier, LevelSuccess, "Job saved successfully!")
	return job, nil
}

func (e *Editor) UpdateStatus(ctx context.Context, jobID int64, status models.JobStatus) error {
	if err := e.api.UpdateStatus(ctx, jobID, status); err != nil {
		notify(e.notifier, LevelError, "Error: "+messageOf(err))
		return err
	}
	notify(e.notifier, LevelSuccess, "Job status updated!")
	return nil
}

// UpdateDetails saves the fields set in req and leaves the rest alone.
func (e *Editor) UpdateDetails(ctx context.Context, jobID int64, req models.DetailsUpdateRequest) error {
	if err := e.api.UpdateDetails(ctx, jobID, req); err != nil {
		notify(e.notifier, LevelError, "Error saving details: "+messageOf(err))
		return err
	}
	notify(e.notifier, LevelSuccess, "Job details updated!")
	return nil
}

// Delete removes one job. Its detail view closes before the request goes out.
func (e *Editor) Delete(ctx context.Context, jobID int64) error {
	e.mirror.clearDetailFor(jobID)
	notify(e.notifier, LevelInfo, "Deleting job...")

	if _, err := e.api.DeleteJobs(ctx, []int64{jobID}); err != nil {
		notify(e.notifier, LevelError, "Error deleting job: "+messageOf(err))
		return err
	}

	e.mirror.removeRows([]int64{jobID})
	notify(e.notifier, LevelSuccess, "Job successfully deleted.")
	return nil
}

// DeleteUntracked removes every job the user has not marked as tracked. The
// detail view and the selection are cleared once the backend confirms.
func (e *Editor) DeleteUntracked(ctx context.Context) error {
	notify(e.notifier, LevelInfo, "Deleting all non-tracked jobs...")

	if _, err := e.api.DeleteUntracked(ctx); err != nil {
		notify(e.notifier, LevelError, "Error deleting jobs: "+messageOf(err))
		return err
	}

	e.mirror.ClearDetail()
	e.mirror.removeUntracked()
	if e.selection != nil {
		e.selection.Clear()
	}
	notify(e.notifier, LevelSuccess, "All non-tracked jobs deleted.")
	return nil
}
