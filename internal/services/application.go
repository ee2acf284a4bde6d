package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/repositories"
)

// ScreeningScheduler is the part of Worker the submission flow needs.
type ScreeningScheduler interface {
	Enqueue(applicationID uuid.UUID) bool
	EnqueueAfter(applicationID uuid.UUID, delay time.Duration)
}

type ResumeUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type ApplicationService interface {
	Apply(ctx context.Context, slug string, req models.ApplyRequest, resume ResumeUpload) (*models.Application, error)
	ListForJob(ctx context.Context, userID, jobID uuid.UUID) ([]models.Application, error)
	UpdateStatus(ctx context.Context, userID, applicationID uuid.UUID, status models.ApplicationStatus) (*models.Application, error)
	TriggerScreening(ctx context.Context, userID, applicationID uuid.UUID) (bool, error)
}

type ApplicationOptions struct {
	MaxUploadSize  int64
	ScreeningDelay time.Duration
}

type applicationService struct {
	appRepo   repositories.ApplicationRepository
	jobs      JobService
	jobRepo   repositories.JobRepository
	storage   StorageService
	notifier  Notifier
	scheduler ScreeningScheduler
	events    EventBroker
	opts      ApplicationOptions
}

func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	jobs JobService,
	storage StorageService,
	notifier Notifier,
	scheduler ScreeningScheduler,
	events EventBroker,
	opts ApplicationOptions,
) ApplicationService {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 5 << 20
	}
	return &applicationService{
		appRepo:   appRepo,
		jobs:      jobs,
		jobRepo:   jobRepo,
		storage:   storage,
		notifier:  notifier,
		scheduler: scheduler,
		events:    events,
		opts:      opts,
	}
}

// Apply records the application with a pending resume, uploads the file,
// points the application at it and schedules screening. Email and screening
// failures do not fail the submission.
func (s *applicationService) Apply(ctx context.Context, slug string, req models.ApplyRequest, resume ResumeUpload) (*models.Application, error) {
	job, err := s.jobs.GetPublic(ctx, slug)
	if err != nil {
		return nil, err
	}

	ext, err := ResumeExtension(resume.Filename)
	if err != nil {
		return nil, err
	}
	if resume.Size > s.opts.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	now := time.Now()
	app := &models.Application{
		ID:           uuid.New(),
		JobID:        job.ID,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        optional(req.Phone),
		ResumeURL:    models.ResumePending,
		CoverLetter:  optional(req.CoverLetter),
		LinkedInURL:  optional(req.LinkedInURL),
		PortfolioURL: optional(req.PortfolioURL),
		Status:       models.ApplicationStatusNew,
		AppliedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("resumes/%s%s", app.ID, ext)
	if err := s.storage.Upload(ctx, objectPath, resume.Body, ResumeMIMEType(ext)); err != nil {
		return nil, fmt.Errorf("upload resume: %w", err)
	}

	resumeURL := s.storage.PublicURL(objectPath)
	if err := s.appRepo.UpdateResumeURL(ctx, app.ID, resumeURL); err != nil {
		return nil, fmt.Errorf("store resume url: %w", err)
	}
	app.ResumeURL = resumeURL

	log.Printf("✅ Application received application_id=%s job_id=%s\n", app.ID, job.ID)
	publishApplication(s.events, EventApplicationCreated, app)

	if s.notifier != nil {
		if err := s.notifier.SendApplicationConfirmation(ctx, app, job); err != nil {
			log.Printf("⚠️  %v application_id=%s\n", err, app.ID)
		}
	}

	if s.scheduler != nil {
		s.scheduler.EnqueueAfter(app.ID, s.opts.ScreeningDelay)
	}

	return app, nil
}

func (s *applicationService) ListForJob(ctx context.Context, userID, jobID uuid.UUID) ([]models.Application, error) {
	if _, err := s.jobs.GetOwned(ctx, userID, jobID); err != nil {
		return nil, err
	}
	return s.appRepo.ListByJob(ctx, jobID)
}

func (s *applicationService) UpdateStatus(ctx context.Context, userID, applicationID uuid.UUID, status models.ApplicationStatus) (*models.Application, error) {
	app, job, err := s.owned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}

	if err := s.appRepo.UpdateStatus(ctx, applicationID, status); err != nil {
		return nil, lookupError(ErrApplicationNotFound, err)
	}
	app.Status = status
	app.UpdatedAt = time.Now()

	publishApplication(s.events, EventApplicationUpdated, app)

	if s.notifier != nil {
		if err := s.notifier.SendStatusUpdate(ctx, app, job.Title); err != nil {
			log.Printf("⚠️  %v application_id=%s\n", err, app.ID)
		}
	}

	return app, nil
}

// TriggerScreening queues a manual screening. It reports false when the
// application is already queued or running.
func (s *applicationService) TriggerScreening(ctx context.Context, userID, applicationID uuid.UUID) (bool, error) {
	app, _, err := s.owned(ctx, userID, applicationID)
	if err != nil {
		return false, err
	}
	if !app.ResumeReady() {
		return false, ErrResumeNotReady
	}
	if app.Screened() {
		return false, ErrAlreadyScreened
	}
	return s.scheduler.Enqueue(applicationID), nil
}

func (s *applicationService) owned(ctx context.Context, userID, applicationID uuid.UUID) (*models.Application, *models.Job, error) {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, nil, lookupError(ErrApplicationNotFound, err)
	}
	job, err := s.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, lookupError(ErrApplicationNotFound, err)
	}
	if job.UserID != userID {
		return nil, nil, ErrApplicationNotFound
	}
	return app, job, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
