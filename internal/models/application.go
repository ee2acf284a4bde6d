package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationStatusNew          ApplicationStatus = "new"
	ApplicationStatusReviewed     ApplicationStatus = "reviewed"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusHired        ApplicationStatus = "hired"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
)

// ResumePending marks an application whose resume upload has not resolved yet.
const ResumePending = "pending"

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusNew, ApplicationStatusReviewed, ApplicationStatusInterviewing,
		ApplicationStatusHired, ApplicationStatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID               uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"job_id"`
	FullName         string            `gorm:"type:text;not null" json:"full_name"`
	Email            string            `gorm:"type:text;not null" json:"email"`
	Phone            *string           `gorm:"type:text" json:"phone,omitempty"`
	ResumeURL        string            `gorm:"type:text;not null;default:'pending'" json:"resume_url"`
	CoverLetter      *string           `gorm:"type:text" json:"cover_letter,omitempty"`
	LinkedInURL      *string           `gorm:"column:linkedin_url;type:text" json:"linkedin_url,omitempty"`
	PortfolioURL     *string           `gorm:"type:text" json:"portfolio_url,omitempty"`
	Status           ApplicationStatus `gorm:"type:text;not null;default:'new'" json:"status"`
	AIScore          *int              `gorm:"type:integer" json:"ai_score,omitempty"`
	AISummary        *string           `gorm:"type:text" json:"ai_summary,omitempty"`
	AIRawResponse    json.RawMessage   `gorm:"type:jsonb" json:"ai_raw_response,omitempty"`
	AIScreeningError *string           `gorm:"type:text" json:"ai_screening_error,omitempty"`
	AppliedAt        time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"applied_at"`
	UpdatedAt        time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Job *Job `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}

// ResumeReady reports whether the resume reference points at an uploaded file.
func (a *Application) ResumeReady() bool {
	return a.ResumeURL != "" && a.ResumeURL != ResumePending
}

func (a *Application) Screened() bool {
	return a.AIScore != nil
}
