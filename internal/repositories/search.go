package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/intelliapply/internal/models"
)

type SearchRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Search, error)
	Create(ctx context.Context, search *models.Search) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type searchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) ListByUser(ctx context.Context, userID string) ([]models.Search, error) {
	var searches []models.Search
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&searches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	return searches, nil
}

func (r *searchRepository) Create(ctx context.Context, search *models.Search) error {
	if search.ID == uuid.Nil {
		search.ID = uuid.New()
	}
	if search.HoursOld <= 0 {
		search.HoursOld = 24
	}
	if err := r.db.WithContext(ctx).Create(search).Error; err != nil {
		return fmt.Errorf("failed to create search: %w", err)
	}
	return nil
}

func (r *searchRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Search{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete search: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
