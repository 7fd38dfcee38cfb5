package models

import (
	"time"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	LevelInternship ExperienceLevel = "internship"
	LevelEntry      ExperienceLevel = "entry_level"
	LevelAssociate  ExperienceLevel = "associate"
	LevelMidSenior  ExperienceLevel = "mid_senior_level"
	LevelDirector   ExperienceLevel = "director"
)

func (l ExperienceLevel) Valid() bool {
	switch l {
	case LevelInternship, LevelEntry, LevelAssociate, LevelMidSenior, LevelDirector:
		return true
	}
	return false
}

// Profile is a resume used as grounding context for every AI call.
type Profile struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          string          `gorm:"type:text;index;not null" json:"user_id,omitempty"`
	Name            string          `gorm:"type:text;not null" json:"name"`
	ResumeContext   string          `gorm:"type:text;not null" json:"resume_context"`
	FullName        string          `gorm:"type:text" json:"full_name"`
	Email           string          `gorm:"type:text" json:"email"`
	Phone           string          `gorm:"type:text" json:"phone"`
	LinkedInURL     string          `gorm:"type:text" json:"linkedin_url"`
	PortfolioURL    string          `gorm:"type:text" json:"portfolio_url"`
	Summary         string          `gorm:"type:text" json:"summary"`
	ExperienceLevel ExperienceLevel `gorm:"type:text;not null;default:'entry_level'" json:"experience_level"`
	ResumeFile      *string         `gorm:"type:text" json:"resume_file"`
	CreatedAt       time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
