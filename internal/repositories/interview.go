package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/jobpost-ats/internal/models"
)

type InterviewRepository interface {
	// Schedule inserts the interview and moves the application to interviewing
	// in a single transaction.
	Schedule(ctx context.Context, interview *models.InterviewSchedule) error
	ListByOwnerFrom(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]models.InterviewSchedule, error)
	CountScheduledByOwner(ctx context.Context, userID uuid.UUID, from time.Time) (int64, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Schedule(ctx context.Context, interview *models.InterviewSchedule) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(interview).Error; err != nil {
			return fmt.Errorf("failed to create interview: %w", err)
		}
		result := tx.Model(&models.Application{}).
			Where("id = ?", interview.ApplicationID).
			Updates(map[string]interface{}{
				"status":     models.ApplicationStatusInterviewing,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update application status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("application: %w", ErrNotFound)
		}
		return nil
	})
	return err
}

func (r *interviewRepository) ListByOwnerFrom(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]models.InterviewSchedule, error) {
	var interviews []models.InterviewSchedule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND interview_date >= ?", userID, models.InterviewStatusScheduled, from).
		Order("interview_date ASC").
		Limit(limit).
		Find(&interviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return interviews, nil
}

func (r *interviewRepository) CountScheduledByOwner(ctx context.Context, userID uuid.UUID, from time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InterviewSchedule{}).
		Where("user_id = ? AND status = ? AND interview_date >= ?", userID, models.InterviewStatusScheduled, from).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count interviews: %w", err)
	}
	return count, nil
}
