package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/jobpost-ats/internal/models"
)

func TestInterviewService_Schedule(t *testing.T) {
	owner := uuid.New()
	job := &models.Job{ID: uuid.New(), UserID: owner, Title: "Engineer"}
	app := &models.Application{ID: uuid.New(), JobID: job.ID, FullName: "Ada", Email: "ada@example.com", Status: models.ApplicationStatusReviewed}
	apps := newFakeAppRepo(app)
	repo := &fakeInterviewRepo{appRepo: apps}
	broker := NewEventBroker(2)
	events, cancel := broker.Subscribe(job.ID)
	defer cancel()

	loc := time.FixedZone("WIB", 7*3600)
	svc := NewInterviewService(repo, apps, newFakeJobRepo(job), broker, loc)

	link := "https://meet.test/abc"
	iv, err := svc.Schedule(context.Background(), owner, app.ID, models.ScheduleInterviewRequest{
		InterviewDate: "2026-03-02",
		InterviewTime: "09:30",
		InterviewType: "video",
		MeetingLink:   &link,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 2, 2, 30, 0, 0, time.UTC), iv.InterviewDate)
	assert.Equal(t, "Ada", iv.ApplicantName)
	assert.Equal(t, models.InterviewTypeVideo, iv.InterviewType)
	assert.Equal(t, models.InterviewStatusScheduled, iv.Status)
	assert.Equal(t, models.ApplicationStatusInterviewing, apps.get(app.ID).Status)

	ev := <-events
	assert.Equal(t, EventInterviewScheduled, ev.Type)
	assert.Equal(t, iv.ID, ev.Interview.ID)
}

func TestInterviewService_ScheduleRejects(t *testing.T) {
	owner := uuid.New()
	job := &models.Job{ID: uuid.New(), UserID: owner}
	app := &models.Application{ID: uuid.New(), JobID: job.ID}
	apps := newFakeAppRepo(app)
	svc := NewInterviewService(&fakeInterviewRepo{appRepo: apps}, apps, newFakeJobRepo(job), nil, time.UTC)
	ctx := context.Background()
	req := models.ScheduleInterviewRequest{InterviewDate: "2026-03-02", InterviewTime: "09:30", InterviewType: "phone"}

	bad := req
	bad.InterviewTime = "25:00"
	_, err := svc.Schedule(ctx, owner, app.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.Schedule(ctx, uuid.New(), app.ID, req)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	_, err = svc.Schedule(ctx, owner, uuid.New(), req)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	assert.Equal(t, 0, apps.mutationCount())
}

func TestInterviewService_ListForRecruiter(t *testing.T) {
	owner := uuid.New()
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	repo := &fakeInterviewRepo{interviews: []models.InterviewSchedule{
		{ID: uuid.New(), UserID: owner, InterviewDate: now.Add(-2 * time.Hour)},
		{ID: uuid.New(), UserID: owner, InterviewDate: now.Add(5 * time.Hour)},
		{ID: uuid.New(), UserID: owner, InterviewDate: now.Add(30 * time.Hour)},
		{ID: uuid.New(), UserID: owner, InterviewDate: now.Add(-30 * time.Hour)},
		{ID: uuid.New(), UserID: uuid.New(), InterviewDate: now.Add(time.Hour)},
	}}

	svc := NewInterviewService(repo, nil, nil, nil, time.UTC).(*interviewService)
	svc.now = func() time.Time { return now }

	resp, err := svc.ListForRecruiter(context.Background(), owner)
	require.NoError(t, err)

	require.Len(t, resp.Today, 2)
	assert.Equal(t, now.Add(-2*time.Hour), resp.Today[0].InterviewDate, "earlier today is still today")
	require.Len(t, resp.Upcoming, 1)
	assert.Equal(t, now.Add(30*time.Hour), resp.Upcoming[0].InterviewDate)
}
