package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/intelliapply/internal/models"
)

type ProfileRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Profile, error)
	FindByID(ctx context.Context, userID string, id uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ListByUser(ctx context.Context, userID string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND user_id = ?", profile.ID, profile.UserID).
		Updates(map[string]interface{}{
			"name":             profile.Name,
			"resume_context":   profile.ResumeContext,
			"full_name":        profile.FullName,
			"email":            profile.Email,
			"phone":            profile.Phone,
			"linkedin_url":     profile.LinkedInURL,
			"portfolio_url":    profile.PortfolioURL,
			"summary":          profile.Summary,
			"experience_level": profile.ExperienceLevel,
			"resume_file":      profile.ResumeFile,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Profile{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
