package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/jobpost-ats/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Job, error)
	ListByOwnerWithCounts(ctx context.Context, userID uuid.UUID) ([]models.JobWithCount, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.JobStatus) error
	// Delete removes an owned job together with its applications and
	// interview schedules, returning the applications that were removed.
	Delete(ctx context.Context, id, userID uuid.UUID) ([]models.Application, error)
	CountByOwner(ctx context.Context, userID uuid.UUID) (total int64, active int64, err error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, wrapFind(err, "job")
	}
	return &job, nil
}

func (r *jobRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, models.JobStatusActive).
		First(&job).Error
	if err != nil {
		return nil, wrapFind(err, "job")
	}
	return &job, nil
}

func (r *jobRepository) ListByOwnerWithCounts(ctx context.Context, userID uuid.UUID) ([]models.JobWithCount, error) {
	var jobs []models.JobWithCount
	err := r.db.WithContext(ctx).
		Table("jobs").
		Select("jobs.*, COUNT(applications.id) AS application_count").
		Joins("LEFT JOIN applications ON applications.job_id = jobs.id").
		Where("jobs.user_id = ?", userID).
		Group("jobs.id").
		Order("jobs.created_at DESC").
		Scan(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.JobStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update job status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job: %w", ErrNotFound)
	}
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id, userID uuid.UUID) ([]models.Application, error) {
	var removed []models.Application
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Find(&removed).Error; err != nil {
			return fmt.Errorf("failed to load job applications: %w", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.InterviewSchedule{}).Error; err != nil {
			return fmt.Errorf("failed to delete job interviews: %w", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return fmt.Errorf("failed to delete job applications: %w", err)
		}

		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Job{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete job: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("job: %w", ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *jobRepository) CountByOwner(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	var row struct {
		Total  int64
		Active int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE status = ?) AS active", models.JobStatusActive).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return row.Total, row.Active, nil
}
