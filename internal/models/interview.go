package models

import (
	"time"

	"github.com/google/uuid"
)

type InterviewType string

const (
	InterviewTypePhone    InterviewType = "phone"
	InterviewTypeVideo    InterviewType = "video"
	InterviewTypeInPerson InterviewType = "in-person"
)

const InterviewStatusScheduled = "scheduled"

type InterviewSchedule struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ApplicationID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"application_id"`
	JobID          uuid.UUID     `gorm:"type:uuid;not null" json:"job_id"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	ApplicantName  string        `gorm:"type:text;not null" json:"applicant_name"`
	ApplicantEmail string        `gorm:"type:text;not null" json:"applicant_email"`
	InterviewDate  time.Time     `gorm:"not null;index" json:"interview_date"`
	InterviewType  InterviewType `gorm:"type:text;not null" json:"interview_type"`
	MeetingLink    *string       `gorm:"type:text" json:"meeting_link,omitempty"`
	Notes          *string       `gorm:"type:text" json:"notes,omitempty"`
	Status         string        `gorm:"type:text;not null;default:'scheduled'" json:"status"`
	CreatedAt      time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Application *Application `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Job         *Job         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (InterviewSchedule) TableName() string {
	return "interview_schedules"
}
