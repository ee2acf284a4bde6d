package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/services"
)

type stubScreening struct {
	result *services.ScreeningResult
	err    error
	calls  int
}

func (s *stubScreening) Screen(_ context.Context, id uuid.UUID) (*services.ScreeningResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.ApplicationID = id
	return &r, nil
}

type stubNotifier struct {
	body  json.RawMessage
	err   error
	calls int
	last  models.SendEmailRequest
}

func (n *stubNotifier) Send(_ context.Context, req models.SendEmailRequest) (json.RawMessage, error) {
	n.calls++
	n.last = req
	return n.body, n.err
}

func (n *stubNotifier) SendApplicationConfirmation(context.Context, *models.Application, *models.Job) error {
	return nil
}

func (n *stubNotifier) SendStatusUpdate(context.Context, *models.Application, string) error {
	return nil
}

type stubJobs struct {
	job     *models.Job
	created *models.CreateJobRequest
	err     error
}

func (s *stubJobs) Create(_ context.Context, userID uuid.UUID, req models.CreateJobRequest) (*models.Job, error) {
	s.created = &req
	return &models.Job{ID: uuid.New(), UserID: userID, Title: req.Title, Slug: "slug-abc123", Status: models.JobStatusActive}, s.err
}

func (s *stubJobs) ListMine(context.Context, uuid.UUID) ([]models.JobWithCount, error) {
	return nil, s.err
}

func (s *stubJobs) GetOwned(_ context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.job == nil || s.job.ID != jobID || s.job.UserID != userID {
		return nil, services.ErrJobNotFound
	}
	return s.job, nil
}

func (s *stubJobs) GetPublic(_ context.Context, slug string) (*models.Job, error) {
	if s.job == nil || s.job.Slug != slug {
		return nil, services.ErrJobNotFound
	}
	return s.job, nil
}

func (s *stubJobs) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, models.JobStatus) error {
	return s.err
}

func (s *stubJobs) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return s.err
}

func (s *stubJobs) DashboardStats(context.Context, uuid.UUID) (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalJobs: 3, ActiveJobs: 2, TotalApplications: 9, ScheduledInterviews: 1}, s.err
}

type stubApplications struct {
	applied  *models.ApplyRequest
	resume   []byte
	filename string
	err      error
	queued   bool
}

func (s *stubApplications) Apply(_ context.Context, _ string, req models.ApplyRequest, resume services.ResumeUpload) (*models.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.applied = &req
	s.filename = resume.Filename
	buf := make([]byte, resume.Size)
	_, _ = resume.Body.Read(buf)
	s.resume = buf
	return &models.Application{ID: uuid.New(), Status: models.ApplicationStatusNew}, nil
}

func (s *stubApplications) ListForJob(context.Context, uuid.UUID, uuid.UUID) ([]models.Application, error) {
	return nil, s.err
}

func (s *stubApplications) UpdateStatus(_ context.Context, _ uuid.UUID, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Application{ID: id, Status: status, UpdatedAt: time.Now()}, nil
}

func (s *stubApplications) TriggerScreening(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.queued, s.err
}
