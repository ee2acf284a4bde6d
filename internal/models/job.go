package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusInactive JobStatus = "inactive"
)

type Job struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	CompanyName  string    `gorm:"type:text;not null" json:"company_name"`
	Location     string    `gorm:"type:text" json:"location"`
	JobType      string    `gorm:"type:text" json:"job_type"`
	Description  string    `gorm:"type:text" json:"description"`
	Requirements string    `gorm:"type:text" json:"requirements"`
	SalaryRange  *string   `gorm:"type:text" json:"salary_range,omitempty"`
	ContactEmail string    `gorm:"type:text" json:"contact_email"`
	Slug         string    `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	Status       JobStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// JobWithCount is a recruiter's job listing row.
type JobWithCount struct {
	Job
	ApplicationCount int64 `json:"application_count"`
}
