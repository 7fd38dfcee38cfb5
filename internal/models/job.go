package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusApplied      JobStatus = "Applied"
	JobStatusInterviewing JobStatus = "Interviewing"
	JobStatusOffer        JobStatus = "Offer"
	JobStatusRejected     JobStatus = "Rejected"
)

// Valid reports whether s is one of the pipeline statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusApplied, JobStatusInterviewing, JobStatusOffer, JobStatusRejected:
		return true
	}
	return false
}

type Contact struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Contact string `json:"contact"`
}

// Contacts is stored as a jsonb column.
type Contacts []Contact

func (c Contacts) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Contacts) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported contacts value %T", value)
	}
	return json.Unmarshal(raw, c)
}

// Job is a scraped or manually entered posting. Nullable columns are pointers so
// that an unset description or rating survives the JSON round trip as null.
type Job struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"type:text;index;not null" json:"user_id,omitempty"`
	SearchID     *string   `gorm:"type:text" json:"search_id"`
	ProfileID    *string   `gorm:"type:text" json:"profile_id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Company      string    `gorm:"type:text;not null" json:"company"`
	JobURL       string    `gorm:"type:text" json:"job_url"`
	Location     *string   `gorm:"type:text" json:"location"`
	Description  *string   `gorm:"type:text" json:"description"`
	GeminiRating *int      `gorm:"type:int" json:"gemini_rating"`
	AIReason     *string   `gorm:"type:text" json:"ai_reason"`
	Notes        *string   `gorm:"type:text" json:"notes"`
	IsTracked    bool      `gorm:"not null;default:false" json:"is_tracked"`
	Status       JobStatus `gorm:"type:text;not null;default:'Applied'" json:"status"`
	Contacts     Contacts  `gorm:"type:jsonb" json:"contacts"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// HasDescription reports whether the posting carries a non-blank description.
func (j *Job) HasDescription() bool {
	return j.Description != nil && strings.TrimSpace(*j.Description) != ""
}

// IsRated reports whether an analysis result has been stored.
func (j *Job) IsRated() bool {
	return j.GeminiRating != nil
}

// DedupKey is the case-insensitive (title, company) pair used to detect
// postings that are already in a user's library.
func DedupKey(title, company string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(company))
}

// ScrapedJob is a posting as extracted from a job board, before it is saved.
type ScrapedJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	JobURL      string `json:"job_url"`
	Location    string `json:"location"`
	Description string `json:"description"`
}
