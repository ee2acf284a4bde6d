package models

type ScreenRequest struct {
	ApplicationID string `json:"applicationId" validate:"required"`
}

type ScreenResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"applicationId,omitempty"`
	Score         *int   `json:"score,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Error         string `json:"error,omitempty"`
}

type SendEmailRequest struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Props    map[string]any `json:"props"`
}

type CreateJobRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	CompanyName  string  `json:"company_name" validate:"required,max=200"`
	Location     string  `json:"location" validate:"required"`
	JobType      string  `json:"job_type" validate:"required,oneof=Full-time Part-time Contract Freelance Internship"`
	Description  string  `json:"description" validate:"required"`
	Requirements string  `json:"requirements" validate:"required"`
	SalaryRange  *string `json:"salary_range"`
	ContactEmail string  `json:"contact_email" validate:"required,email"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new reviewed interviewing hired rejected"`
}

// ApplyRequest carries the text fields of the public application form.
type ApplyRequest struct {
	FullName     string `form:"full_name" validate:"required,max=200"`
	Email        string `form:"email" validate:"required,email"`
	Phone        string `form:"phone"`
	CoverLetter  string `form:"cover_letter"`
	LinkedInURL  string `form:"linkedin_url" validate:"omitempty,url"`
	PortfolioURL string `form:"portfolio_url" validate:"omitempty,url"`
}

type ScheduleInterviewRequest struct {
	InterviewDate string  `json:"interview_date" validate:"required,datetime=2006-01-02"`
	InterviewTime string  `json:"interview_time" validate:"required,datetime=15:04"`
	InterviewType string  `json:"interview_type" validate:"required,oneof=phone video in-person"`
	MeetingLink   *string `json:"meeting_link" validate:"omitempty,url"`
	Notes         *string `json:"notes"`
}

type ApplyResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type InterviewsResponse struct {
	Today    []InterviewSchedule `json:"today"`
	Upcoming []InterviewSchedule `json:"upcoming"`
}

type DashboardStats struct {
	TotalJobs           int64 `json:"total_jobs"`
	ActiveJobs          int64 `json:"active_jobs"`
	TotalApplications   int64 `json:"total_applications"`
	ScheduledInterviews int64 `json:"scheduled_interviews"`
}

type CandidateMatch struct {
	Application Application `json:"application"`
	Score       float32     `json:"score"`
	Excerpt     string      `json:"excerpt"`
}
