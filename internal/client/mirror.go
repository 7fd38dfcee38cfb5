package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"alfredoptarigan/intelliapply/internal/feed"
	"alfredoptarigan/intelliapply/internal/models"
)

const jobsTable = "jobs"

// JobSource is the remote side of the mirror.
type JobSource interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	OpenFeed(ctx context.Context) (io.ReadCloser, error)
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Mirror keeps a local, newest first copy of the user's jobs in step with the
// backend: one bulk load, then inserts, updates and deletes from the change
// feed. A dropped feed is not reopened; see ResyncEvery.
type Mirror struct {
	source   JobSource
	notifier Notifier

	mu     sync.Mutex
	jobs   []models.Job
	detail *models.Job
	sub    *subscription

	// listeners registered by the selection
	onRemove []func(id int64)
	onFilter []func()
}

func NewMirror(source JobSource, notifier Notifier) *Mirror {
	return &Mirror{source: source, notifier: notifier}
}

// Load replaces the collection with a fresh fetch. A failed fetch leaves it
// empty and emits one error notice.
func (m *Mirror) Load(ctx context.Context) error {
	jobs, err := m.source.ListJobs(ctx)
	if err != nil {
		m.mu.Lock()
		m.jobs = nil
		m.mu.Unlock()
		notify(m.notifier, LevelError, "Failed to load jobs: "+messageOf(err))
		return err
	}

	sortNewestFirst(jobs)
	m.mu.Lock()
	m.jobs = jobs
	m.mu.Unlock()
	return nil
}

// Subscribe opens the change feed. It is a no-op while a feed is open. Changes
// are applied, and their notices delivered, on a single reader goroutine; see
// Notifier for what a notifier may do there.
func (m *Mirror) Subscribe(ctx context.Context) error {
	m.mu.Lock()
	if m.sub != nil {
		m.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	m.sub = sub
	m.mu.Unlock()

	body, err := m.source.OpenFeed(ctx)
	if err != nil {
		m.release(sub)
		cancel()
		close(sub.done)
		return err
	}

	go func() {
		defer close(sub.done)
		defer body.Close()
		// the read error is the dropped feed itself; nothing retries it
		_ = readChanges(body, m.Apply)
		m.release(sub)
		cancel()
	}()
	return nil
}

// release forgets sub if it is still the current subscription.
func (m *Mirror) release(sub *subscription) {
	m.mu.Lock()
	if m.sub == sub {
		m.sub = nil
	}
	m.mu.Unlock()
}

// Unsubscribe closes the change feed and waits for the reader to stop. It is
// safe to call without an open feed, but not from a Notifier.
func (m *Mirror) Unsubscribe() {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub == nil {
		return
	}
	sub.cancel()
	<-sub.done
}

// Subscribed reports whether a feed is open.
func (m *Mirror) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub != nil
}

// Apply merges one change into the collection.
func (m *Mirror) Apply(c feed.Change) {
	if c.Table != "" && c.Table != jobsTable {
		return
	}

	var notices []Notice
	var removed []int64

	m.mu.Lock()
	switch c.Type {
	case feed.Insert:
		var job models.Job
		if err := json.Unmarshal(c.New, &job); err != nil {
			break
		}
		// a row already seen through a resync is moved, not duplicated
		if idx := m.indexLocked(job.ID); idx >= 0 {
			m.jobs = append(m.jobs[:idx], m.jobs[idx+1:]...)
		}
		m.jobs = append([]models.Job{job}, m.jobs...)
		if job.SearchID != nil && *job.SearchID != "" {
			notices = append(notices, Notice{Level: LevelInfo, Message: "New job found: " + job.Title})
		}

	case feed.Update:
		notices = m.applyUpdate(c)

	case feed.Delete:
		id, ok := rowID(c.Old)
		if !ok {
			id, ok = rowID(c.New)
		}
		if !ok {
			break
		}
		m.removeLocked(id)
		removed = append(removed, id)
	}
	listeners := m.onRemove
	m.mu.Unlock()

	for _, id := range removed {
		for _, fn := range listeners {
			fn(id)
		}
	}
	for _, n := range notices {
		notify(m.notifier, n.Level, n.Message)
	}
}

func (m *Mirror) applyUpdate(c feed.Change) []Notice {
	id, ok := rowID(c.New)
	if !ok {
		return nil
	}

	// the local row is the better baseline: a repeated event finds the new
	// values already applied and crosses no edge
	var prev models.Job
	known := false
	idx := m.indexLocked(id)
	if idx >= 0 {
		prev, known = m.jobs[idx], true
	} else if len(c.Old) > 0 {
		known = json.Unmarshal(c.Old, &prev) == nil
	}

	next, err := merge(prev, c.New)
	if err != nil {
		return nil
	}
	if idx >= 0 {
		m.jobs[idx] = next
	}
	if m.detail != nil && m.detail.ID == id {
		if d, err := merge(*m.detail, c.New); err == nil {
			m.detail = &d
		}
	}

	if !known {
		return nil
	}
	var notices []Notice
	for _, t := range DetectTransitions(prev, next) {
		notices = append(notices, t.notice(next.Title))
	}
	return notices
}

// Jobs returns a copy of the collection, newest first.
func (m *Mirror) Jobs() []models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Job, len(m.jobs))
	for i, j := range m.jobs {
		out[i] = cloneJob(j)
	}
	return out
}

// Job returns the row with id.
func (m *Mirror) Job(id int64) (models.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := m.indexLocked(id); idx >= 0 {
		return cloneJob(m.jobs[idx]), true
	}
	return models.Job{}, false
}

// Detail returns the row open in the detail view, if any.
func (m *Mirror) Detail() *models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detail == nil {
		return nil
	}
	d := cloneJob(*m.detail)
	return &d
}

// SelectDetail opens the row with id in the detail view.
func (m *Mirror) SelectDetail(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexLocked(id)
	if idx < 0 {
		return false
	}
	d := cloneJob(m.jobs[idx])
	m.detail = &d
	return true
}

func (m *Mirror) ClearDetail() {
	m.mu.Lock()
	m.detail = nil
	m.mu.Unlock()
}

// FilterChanged is called by the view when its filter or sort order changes.
func (m *Mirror) FilterChanged() {
	m.mu.Lock()
	listeners := m.onFilter
	m.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// ResyncEvery reloads the collection every interval until ctx is done. It
// covers changes missed while the feed was down. A resync replaces the
// collection without per-row notices; a failed one keeps the current rows.
func (m *Mirror) ResyncEvery(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := m.resync(ctx); err != nil && !errors.Is(err, context.Canceled) {
				notify(m.notifier, LevelWarning, "Could not refresh jobs: "+messageOf(err))
			}
		}
	}
}

func (m *Mirror) resync(ctx context.Context) error {
	jobs, err := m.source.ListJobs(ctx)
	if err != nil {
		return err
	}
	sortNewestFirst(jobs)

	present := make(map[int64]int, len(jobs))
	for i, j := range jobs {
		present[j.ID] = i
	}

	m.mu.Lock()
	var gone []int64
	for _, j := range m.jobs {
		if _, ok := present[j.ID]; !ok {
			gone = append(gone, j.ID)
		}
	}
	m.jobs = jobs
	if m.detail != nil {
		if i, ok := present[m.detail.ID]; ok {
			d := cloneJob(jobs[i])
			m.detail = &d
		} else {
			m.detail = nil
		}
	}
	listeners := m.onRemove
	m.mu.Unlock()

	for _, id := range gone {
		for _, fn := range listeners {
			fn(id)
		}
	}
	return nil
}

// removeRows drops ids after a confirmed remote delete.
func (m *Mirror) removeRows(ids []int64) {
	m.mu.Lock()
	for _, id := range ids {
		m.removeLocked(id)
	}
	listeners := m.onRemove
	m.mu.Unlock()

	for _, id := range ids {
		for _, fn := range listeners {
			fn(id)
		}
	}
}

// removeUntracked drops every row not marked as tracked after the backend
// confirms it deleted them.
func (m *Mirror) removeUntracked() {
	m.mu.Lock()
	var ids []int64
	for _, j := range m.jobs {
		if !j.IsTracked {
			ids = append(ids, j.ID)
		}
	}
	m.mu.Unlock()
	m.removeRows(ids)
}

// clearDetailFor closes the detail view if it shows id.
func (m *Mirror) clearDetailFor(id int64) {
	m.mu.Lock()
	if m.detail != nil && m.detail.ID == id {
		m.detail = nil
	}
	m.mu.Unlock()
}

func (m *Mirror) observe(onRemove func(id int64), onFilter func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if onRemove != nil {
		m.onRemove = append(m.onRemove, onRemove)
	}
	if onFilter != nil {
		m.onFilter = append(m.onFilter, onFilter)
	}
}

func (m *Mirror) removeLocked(id int64) {
	if idx := m.indexLocked(id); idx >= 0 {
		m.jobs = append(m.jobs[:idx], m.jobs[idx+1:]...)
	}
	if m.detail != nil && m.detail.ID == id {
		m.detail = nil
	}
}

func (m *Mirror) indexLocked(id int64) int {
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			return i
		}
	}
	return -1
}

func rowID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var row struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &row); err != nil || row.ID == nil {
		return 0, false
	}
	return *row.ID, true
}

// merge overlays the fields present in patch onto a copy of base.
func merge(base models.Job, patch json.RawMessage) (models.Job, error) {
	next := cloneJob(base)
	if err := json.Unmarshal(patch, &next); err != nil {
		return base, err
	}
	return next, nil
}

// cloneJob copies j without sharing pointer fields, so decoding into the copy
// cannot reach the original.
func cloneJob(j models.Job) models.Job {
	c := j
	c.SearchID = clonePtr(j.SearchID)
	c.ProfileID = clonePtr(j.ProfileID)
	c.Location = clonePtr(j.Location)
	c.Description = clonePtr(j.Description)
	c.GeminiRating = clonePtr(j.GeminiRating)
	c.AIReason = clonePtr(j.AIReason)
	c.Notes = clonePtr(j.Notes)
	if j.Contacts != nil {
		c.Contacts = append(models.Contacts(nil), j.Contacts...)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortNewestFirst(jobs []models.Job) {
	sort.SliceStable(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
}
