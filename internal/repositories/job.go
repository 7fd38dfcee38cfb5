package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/intelliapply/internal/feed"
	"alfredoptarigan/intelliapply/internal/models"
)

const jobsTable = "jobs"

type JobRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Job, error)
	FindByID(ctx context.Context, userID string, id int64) (*models.Job, error)
	FindUnrated(ctx context.Context, userID string, ids []int64) ([]models.Job, error)
	CreateManual(ctx context.Context, job *models.Job) error
	BatchSave(ctx context.Context, userID, searchID string, scraped []models.ScrapedJob) (int, error)
	UpdateStatus(ctx context.Context, userID string, id int64, status models.JobStatus) error
	UpdateDetails(ctx context.Context, userID string, id int64, req models.DetailsUpdateRequest) error
	SaveAnalysis(ctx context.Context, userID string, id int64, profileID string, analysis models.JobAnalysis) error
	DeleteMany(ctx context.Context, userID string, ids []int64) (int, error)
	DeleteUntracked(ctx context.Context, userID string) (int, error)
}

type jobRepository struct {
	db        *gorm.DB
	publisher feed.Publisher
}

// NewJobRepository returns a repository that reports every write to publisher.
func NewJobRepository(db *gorm.DB, publisher feed.Publisher) JobRepository {
	if publisher == nil {
		publisher = feed.Nop{}
	}
	return &jobRepository{db: db, publisher: publisher}
}

func (r *jobRepository) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) FindByID(ctx context.Context, userID string, id int64) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

// FindUnrated returns the jobs among ids that have a description but no rating.
func (r *jobRepository) FindUnrated(ctx context.Context, userID string, ids []int64) ([]models.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Where("description IS NOT NULL AND description <> ''").
		Where("gemini_rating IS NULL").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unrated jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) CreateManual(ctx context.Context, job *models.Job) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("user_id = ? AND LOWER(title) = ? AND LOWER(company) = ?",
			job.UserID, strings.ToLower(strings.TrimSpace(job.Title)), strings.ToLower(strings.TrimSpace(job.Company))).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check duplicates: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}

	if job.Status == "" {
		job.Status = models.JobStatusApplied
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.publish(ctx, feed.Insert, job.UserID, job, nil)
	return nil
}

// BatchSave inserts the scraped postings that are not already in the user's
// library and returns how many were saved.
func (r *jobRepository) BatchSave(ctx context.Context, userID, searchID string, scraped []models.ScrapedJob) (int, error) {
	var existing []models.Job
	err := r.db.WithContext(ctx).
		Select("title", "company").
		Where("user_id = ?", userID).
		Find(&existing).Error
	if err != nil {
		return 0, fmt.Errorf("failed to fetch existing jobs: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, j := range existing {
		seen[models.DedupKey(j.Title, j.Company)] = struct{}{}
	}

	toSave, skipped := filterNewJobs(seen, scraped, userID, searchID, time.Now().UTC())
	if len(toSave) == 0 {
		log.Printf("📋 No new jobs to save. Skipped %d\n", skipped)
		return 0, nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&toSave, 100).Error; err != nil {
		return 0, fmt.Errorf("failed to batch insert jobs: %w", err)
	}
	log.Printf("💾 Saved %d new jobs. Skipped %d\n", len(toSave), skipped)

	for i := range toSave {
		r.publish(ctx, feed.Insert, userID, &toSave[i], nil)
	}
	return len(toSave), nil
}

// filterNewJobs drops incomplete rows and duplicates, both against seen and
// within the batch. seen is updated in place.
func filterNewJobs(seen map[string]struct{}, scraped []models.ScrapedJob, userID, searchID string, now time.Time) ([]models.Job, int) {
	var out []models.Job
	skipped := 0

	for _, s := range scraped {
		title := strings.TrimSpace(s.Title)
		company := strings.TrimSpace(s.Company)
		if title == "" || company == "" || strings.TrimSpace(s.JobURL) == "" {
			skipped++
			continue
		}

		key := models.DedupKey(title, company)
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		seen[key] = struct{}{}

		job := models.Job{
			UserID:    userID,
			Title:     title,
			Company:   company,
			JobURL:    s.JobURL,
			Status:    models.JobStatusApplied,
			IsTracked: false,
			CreatedAt: now,
		}
		if searchID != "" {
			job.SearchID = stringPtr(searchID)
		}
		if s.Location != "" {
			job.Location = stringPtr(s.Location)
		}
		if strings.TrimSpace(s.Description) != "" {
			job.Description = stringPtr(s.Description)
		}
		out = append(out, job)
	}

	return out, skipped
}

func (r *jobRepository) UpdateStatus(ctx context.Context, userID string, id int64, status models.JobStatus) error {
	return r.update(ctx, userID, id, map[string]interface{}{
		"status": status,
	})
}

func (r *jobRepository) UpdateDetails(ctx context.Context, userID string, id int64, req models.DetailsUpdateRequest) error {
	updates := map[string]interface{}{}

	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Contacts != nil {
		updates["contacts"] = *req.Contacts
	}
	if req.IsTracked != nil {
		updates["is_tracked"] = *req.IsTracked
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		return nil
	}
	return r.update(ctx, userID, id, updates)
}

func (r *jobRepository) SaveAnalysis(ctx context.Context, userID string, id int64, profileID string, analysis models.JobAnalysis) error {
	return r.update(ctx, userID, id, map[string]interface{}{
		"gemini_rating": analysis.GeminiRating,
		"ai_reason":     analysis.AIReason,
		"profile_id":    profileID,
	})
}

func (r *jobRepository) update(ctx context.Context, userID string, id int64, updates map[string]interface{}) error {
	old, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	updated, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}

	r.publish(ctx, feed.Update, userID, updated, old)
	return nil
}

func (r *jobRepository) DeleteMany(ctx context.Context, userID string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteWhere(ctx, userID, r.db.Where("user_id = ? AND id IN ?", userID, ids))
}

func (r *jobRepository) DeleteUntracked(ctx context.Context, userID string) (int, error) {
	return r.deleteWhere(ctx, userID, r.db.Where("user_id = ? AND is_tracked = ?", userID, false))
}

func (r *jobRepository) deleteWhere(ctx context.Context, userID string, scope *gorm.DB) (int, error) {
	var doomed []models.Job
	if err := scope.WithContext(ctx).Find(&doomed).Error; err != nil {
		return 0, fmt.Errorf("failed to load jobs for delete: %w", err)
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	ids := make([]int64, len(doomed))
	for i, j := range doomed {
		ids[i] = j.ID
	}

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Job{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete jobs: %w", result.Error)
	}

	for i := range doomed {
		r.publish(ctx, feed.Delete, userID, nil, &doomed[i])
	}
	return int(result.RowsAffected), nil
}

func (r *jobRepository) publish(ctx context.Context, typ feed.ChangeType, userID string, newRow, oldRow *models.Job) {
	var n, o any
	if newRow != nil {
		n = newRow
	}
	if oldRow != nil {
		o = oldRow
	}

	c, err := feed.NewChange(typ, jobsTable, userID, n, o)
	if err != nil {
		log.Printf("⚠️  Failed to build %s change: %v\n", typ, err)
		return
	}
	if err := r.publisher.Publish(ctx, c); err != nil {
		log.Printf("⚠️  Failed to publish %s change: %v\n", typ, err)
	}
}

func stringPtr(s string) *string {
	return &s
}
