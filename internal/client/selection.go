package client

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"alfredoptarigan/intelliapply/internal/models"
)

// JobActions are the bulk endpoints the selection drives.
type JobActions interface {
	DeleteJobs(ctx context.Context, ids []int64) (string, error)
	BulkAnalyze(ctx context.Context, profileID string, ids []int64) (string, error)
}

// ActiveProfile names the profile AI requests are grounded on.
type ActiveProfile interface {
	ActiveID() string
}

// Selection is the set of job ids chosen for a bulk action. It empties itself
// when the mirror's filter changes and forgets rows the mirror drops.
type Selection struct {
	mirror   *Mirror
	actions  JobActions
	profiles ActiveProfile
	notifier Notifier

	mu  sync.Mutex
	ids map[int64]struct{}
}

func NewSelection(mirror *Mirror, actions JobActions, profiles ActiveProfile, notifier Notifier) *Selection {
	s := &Selection{
		mirror:   mirror,
		actions:  actions,
		profiles: profiles,
		notifier: notifier,
		ids:      make(map[int64]struct{}),
	}
	mirror.observe(s.drop, s.Clear)
	return s
}

// Toggle flips the membership of id.
func (s *Selection) Toggle(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	s.ids = make(map[int64]struct{})
	s.mu.Unlock()
}

func (s *Selection) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, k int) bool { return out[i] < out[k] })
	return out
}

func (s *Selection) drop(id int64) {
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}

// BulkDelete deletes every selected job in one request. The local rows and the
// selection change only once the backend confirms; on failure the selection is
// kept so the user can retry.
func (s *Selection) BulkDelete(ctx context.Context) error {
	ids := s.IDs()
	if len(ids) == 0 {
		notify(s.notifier, LevelWarning, "No jobs selected.")
		return nil
	}

	if _, err := s.actions.DeleteJobs(ctx, ids); err != nil {
		notify(s.notifier, LevelError, "Error deleting selected jobs: "+messageOf(err))
		return err
	}

	s.mirror.removeRows(ids)
	s.Clear()
	notify(s.notifier, LevelSuccess, "Selected jobs deleted.")
	return nil
}

// BulkAnalyze queues analysis for the jobs that have a description but no
// rating yet. Ratings arrive later through the mirror.
func (s *Selection) BulkAnalyze(ctx context.Context, jobs []models.Job) error {
	profileID := s.profiles.ActiveID()
	if profileID == "" {
		notify(s.notifier, LevelError, "Please select an active profile first.")
		return ErrPrecondition
	}

	var ids []int64
	for i := range jobs {
		if !jobs[i].IsRated() && jobs[i].HasDescription() {
			ids = append(ids, jobs[i].ID)
		}
	}
	if len(ids) == 0 {
		notify(s.notifier, LevelInfo, "No new jobs with descriptions to analyze.")
		return nil
	}

	message, err := s.actions.BulkAnalyze(ctx, profileID, ids)
	if err != nil {
		notify(s.notifier, LevelError, "Error starting bulk analysis: "+messageOf(err))
		return err
	}

	s.Clear()
	if message == "" {
		message = fmt.Sprintf("Enqueued %d jobs for analysis.", len(ids))
	}
	notify(s.notifier, LevelSuccess, message)
	return nil
}
