package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/repositories"
)

type JobService interface {
	Create(ctx context.Context, userID uuid.UUID, req models.CreateJobRequest) (*models.Job, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.JobWithCount, error)
	GetOwned(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error)
	GetPublic(ctx context.Context, slug string) (*models.Job, error)
	UpdateStatus(ctx context.Context, userID, jobID uuid.UUID, status models.JobStatus) error
	Delete(ctx context.Context, userID, jobID uuid.UUID) error
	DashboardStats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error)
}

// JobIndexRemover drops a job's candidates from the search index.
type JobIndexRemover interface {
	RemoveJob(ctx context.Context, jobID uuid.UUID) error
}

// JobArtifacts are the stores outside the database that hold a job's data.
// Nil members are skipped on delete.
type JobArtifacts struct {
	Storage StorageService
	Index   JobIndexRemover
	Bucket  string
}

type jobService struct {
	jobRepo       repositories.JobRepository
	appRepo       repositories.ApplicationRepository
	interviewRepo repositories.InterviewRepository
	artifacts     JobArtifacts
	now           func() time.Time
}

func NewJobService(
	jobRepo repositories.JobRepository,
	appRepo repositories.ApplicationRepository,
	interviewRepo repositories.InterviewRepository,
	artifacts JobArtifacts,
) JobService {
	return &jobService{
		jobRepo:       jobRepo,
		appRepo:       appRepo,
		interviewRepo: interviewRepo,
		artifacts:     artifacts,
		now:           time.Now,
	}
}

func (s *jobService) Create(ctx context.Context, userID uuid.UUID, req models.CreateJobRequest) (*models.Job, error) {
	now := s.now()
	job := &models.Job{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        strings.TrimSpace(req.Title),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Location:     strings.TrimSpace(req.Location),
		JobType:      req.JobType,
		Description:  req.Description,
		Requirements: req.Requirements,
		SalaryRange:  req.SalaryRange,
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Slug:         GenerateSlug(req.Title),
		Status:       models.JobStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	log.Printf("✅ Job created job_id=%s slug=%s\n", job.ID, job.Slug)
	return job, nil
}

func (s *jobService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.JobWithCount, error) {
	return s.jobRepo.ListByOwnerWithCounts(ctx, userID)
}

// GetOwned hides jobs of other recruiters behind ErrJobNotFound.
func (s *jobService) GetOwned(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, lookupError(ErrJobNotFound, err)
	}
	if job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *jobService) GetPublic(ctx context.Context, slug string) (*models.Job, error) {
	job, err := s.jobRepo.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, lookupError(ErrJobNotFound, err)
	}
	return job, nil
}

func (s *jobService) UpdateStatus(ctx context.Context, userID, jobID uuid.UUID, status models.JobStatus) error {
	if err := s.jobRepo.UpdateStatus(ctx, jobID, userID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrJobNotFound
		}
		return err
	}
	return nil
}

// Delete removes the job, its applications and interviews, then the resume
// files and index entries left behind. Cleanup failures are only logged.
func (s *jobService) Delete(ctx context.Context, userID, jobID uuid.UUID) error {
	removed, err := s.jobRepo.Delete(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrJobNotFound
		}
		return err
	}

	if s.artifacts.Storage != nil {
		for _, app := range removed {
			if !app.ResumeReady() {
				continue
			}
			objectPath, err := ResolveStoragePath(app.ResumeURL, s.artifacts.Bucket)
			if err != nil {
				log.Printf("⚠️  Skipping resume cleanup application_id=%s: %v\n", app.ID, err)
				continue
			}
			if err := s.artifacts.Storage.Delete(ctx, objectPath); err != nil {
				log.Printf("⚠️  Failed to delete resume application_id=%s path=%s: %v\n", app.ID, objectPath, err)
			}
		}
	}

	if s.artifacts.Index != nil {
		if err := s.artifacts.Index.RemoveJob(ctx, jobID); err != nil && !errors.Is(err, ErrIndexDisabled) {
			log.Printf("⚠️  Failed to drop indexed candidates job_id=%s: %v\n", jobID, err)
		}
	}

	log.Printf("🗑️  Job deleted job_id=%s applications=%d\n", jobID, len(removed))
	return nil
}

func (s *jobService) DashboardStats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error) {
	total, active, err := s.jobRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	apps, err := s.appRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	interviews, err := s.interviewRepo.CountScheduledByOwner(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalJobs:           total,
		ActiveJobs:          active,
		TotalApplications:   apps,
		ScheduledInterviews: interviews,
	}, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug lower-cases the title, collapses everything but letters and
// digits into dashes and appends a six character random suffix.
func GenerateSlug(title string) string {
	base := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	if base == "" {
		return "job-" + suffix
	}
	return fmt.Sprintf("%s-%s", base, suffix)
}
