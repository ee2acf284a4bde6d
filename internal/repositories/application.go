package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/jobpost-ats/internal/models"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Application, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Application, error)
	UpdateResumeURL(ctx context.Context, id uuid.UUID, resumeURL string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error
	SaveScreeningResult(ctx context.Context, id uuid.UUID, result ScreeningUpdate) error
	RecordScreeningError(ctx context.Context, id uuid.UUID, message string) error
	FindUnscreened(ctx context.Context, appliedBefore time.Time, limit int) ([]models.Application, error)
	ListScreened(ctx context.Context, limit int) ([]models.Application, error)
	CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ScreeningUpdate struct {
	Score       int
	Summary     string
	RawResponse json.RawMessage
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, wrapFind(err, "application")
	}
	return &app, nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	if len(ids) == 0 {
		return apps, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to find applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) UpdateResumeURL(ctx context.Context, id uuid.UUID, resumeURL string) error {
	return r.update(ctx, id, map[string]interface{}{"resume_url": resumeURL})
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

// SaveScreeningResult writes the AI columns only while the row is still unscored.
func (r *applicationRepository) SaveScreeningResult(ctx context.Context, id uuid.UUID, result ScreeningUpdate) error {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND ai_score IS NULL", id).
		Updates(map[string]interface{}{
			"ai_score":           result.Score,
			"ai_summary":         result.Summary,
			"ai_raw_response":    string(result.RawResponse),
			"ai_screening_error": gorm.Expr("NULL"),
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save screening result: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("application already screened: %w", ErrConflict)
	}
	return nil
}

func (r *applicationRepository) RecordScreeningError(ctx context.Context, id uuid.UUID, message string) error {
	return r.update(ctx, id, map[string]interface{}{"ai_screening_error": message})
}

func (r *applicationRepository) FindUnscreened(ctx context.Context, appliedBefore time.Time, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("ai_score IS NULL AND ai_screening_error IS NULL").
		Where("resume_url <> '' AND resume_url <> ?", models.ResumePending).
		Where("applied_at < ?", appliedBefore).
		Order("applied_at ASC").
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unscreened applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) ListScreened(ctx context.Context, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("ai_score IS NOT NULL").
		Order("applied_at ASC").
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list screened applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

func (r *applicationRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("application: %w", ErrNotFound)
	}
	return nil
}
