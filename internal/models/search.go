package models

import (
	"time"

	"github.com/google/uuid"
)

// Search is a saved scrape query. Searches are not tied to a profile.
type Search struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          string          `gorm:"type:text;index;not null" json:"user_id,omitempty"`
	Name            string          `gorm:"type:text" json:"name"`
	SearchTerm      string          `gorm:"type:text;not null" json:"search_term"`
	Location        string          `gorm:"type:text" json:"location"`
	ExperienceLevel ExperienceLevel `gorm:"type:text" json:"experience_level"`
	HoursOld        int             `gorm:"not null;default:24" json:"hours_old"`
	CreatedAt       time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Search) TableName() string {
	return "searches"
}
