package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/repositories"
)

type InterviewService interface {
	Schedule(ctx context.Context, userID, applicationID uuid.UUID, req models.ScheduleInterviewRequest) (*models.InterviewSchedule, error)
	ListForRecruiter(ctx context.Context, userID uuid.UUID) (*models.InterviewsResponse, error)
}

type interviewService struct {
	interviewRepo repositories.InterviewRepository
	appRepo       repositories.ApplicationRepository
	jobRepo       repositories.JobRepository
	events        EventBroker
	loc           *time.Location
	now           func() time.Time
}

// NewInterviewService interprets interview dates and "today" in loc.
func NewInterviewService(
	interviewRepo repositories.InterviewRepository,
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	events EventBroker,
	loc *time.Location,
) InterviewService {
	if loc == nil {
		loc = time.Local
	}
	return &interviewService{
		interviewRepo: interviewRepo,
		appRepo:       appRepo,
		jobRepo:       jobRepo,
		events:        events,
		loc:           loc,
		now:           time.Now,
	}
}

func (s *interviewService) Schedule(ctx context.Context, userID, applicationID uuid.UUID, req models.ScheduleInterviewRequest) (*models.InterviewSchedule, error) {
	at, err := time.ParseInLocation("2006-01-02 15:04", req.InterviewDate+" "+req.InterviewTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, lookupError(ErrApplicationNotFound, err)
	}
	job, err := s.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, lookupError(ErrApplicationNotFound, err)
	}
	if job.UserID != userID {
		return nil, ErrApplicationNotFound
	}

	interview := &models.InterviewSchedule{
		ID:             uuid.New(),
		ApplicationID:  app.ID,
		JobID:          job.ID,
		UserID:         userID,
		ApplicantName:  app.FullName,
		ApplicantEmail: app.Email,
		InterviewDate:  at.UTC(),
		InterviewType:  models.InterviewType(req.InterviewType),
		MeetingLink:    req.MeetingLink,
		Notes:          req.Notes,
		Status:         models.InterviewStatusScheduled,
		CreatedAt:      s.now(),
	}
	if err := s.interviewRepo.Schedule(ctx, interview); err != nil {
		return nil, lookupError(ErrApplicationNotFound, err)
	}

	app.Status = models.ApplicationStatusInterviewing
	log.Printf("✅ Interview scheduled application_id=%s at=%s\n", app.ID, interview.InterviewDate.Format(time.RFC3339))

	if s.events != nil {
		s.events.Publish(Event{
			Type:        EventInterviewScheduled,
			JobID:       job.ID,
			Application: app,
			Interview:   interview,
		})
	}

	return interview, nil
}

// ListForRecruiter splits scheduled interviews from the start of today into
// today's and later ones.
func (s *interviewService) ListForRecruiter(ctx context.Context, userID uuid.UUID) (*models.InterviewsResponse, error) {
	now := s.now().In(s.loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	interviews, err := s.interviewRepo.ListByOwnerFrom(ctx, userID, startOfDay, 100)
	if err != nil {
		return nil, err
	}

	resp := &models.InterviewsResponse{
		Today:    []models.InterviewSchedule{},
		Upcoming: []models.InterviewSchedule{},
	}
	for _, iv := range interviews {
		if iv.InterviewDate.Before(endOfDay) {
			resp.Today = append(resp.Today, iv)
		} else {
			resp.Upcoming = append(resp.Upcoming, iv)
		}
	}
	return resp, nil
}
