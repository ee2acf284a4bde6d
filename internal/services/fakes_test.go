package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/repositories"
)

type fakeAppRepo struct {
	mu        sync.Mutex
	apps      map[uuid.UUID]*models.Application
	findErr   error
	saveErr   error
	mutations int
	errors    map[uuid.UUID]string
}

func newFakeAppRepo(apps ...*models.Application) *fakeAppRepo {
	r := &fakeAppRepo{
		apps:   make(map[uuid.UUID]*models.Application),
		errors: make(map[uuid.UUID]string),
	}
	for _, a := range apps {
		r.apps[a.ID] = a
	}
	return r
}

func (r *fakeAppRepo) get(id uuid.UUID) *models.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (r *fakeAppRepo) mutationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutations
}

func (r *fakeAppRepo) Create(_ context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeAppRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if a := r.get(id); a != nil {
		return a, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAppRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Application
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (r *fakeAppRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Application, error) {
	var out []models.Application
	for _, id := range ids {
		if a := r.get(id); a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) UpdateResumeURL(_ context.Context, id uuid.UUID, resumeURL string) error {
	return r.mutate(id, func(a *models.Application) { a.ResumeURL = resumeURL })
}

func (r *fakeAppRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	return r.mutate(id, func(a *models.Application) { a.Status = status })
}

func (r *fakeAppRepo) SaveScreeningResult(_ context.Context, id uuid.UUID, result repositories.ScreeningUpdate) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok || a.AIScore != nil {
		return repositories.ErrConflict
	}
	score := result.Score
	summary := result.Summary
	a.AIScore = &score
	a.AISummary = &summary
	a.AIRawResponse = append(json.RawMessage(nil), result.RawResponse...)
	r.mutations++
	return nil
}

func (r *fakeAppRepo) RecordScreeningError(_ context.Context, id uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[id] = message
	if a, ok := r.apps[id]; ok {
		a.AIScreeningError = &message
	}
	return nil
}

func (r *fakeAppRepo) recordedError(id uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.errors[id]
	return msg, ok
}

func (r *fakeAppRepo) FindUnscreened(_ context.Context, before time.Time, limit int) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Application
	for _, a := range r.apps {
		if a.AIScore == nil && a.AIScreeningError == nil && a.ResumeReady() && a.AppliedAt.Before(before) {
			out = append(out, *a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAppRepo) ListScreened(_ context.Context, limit int) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Application
	for _, a := range r.apps {
		if a.AIScore != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) CountByOwner(_ context.Context, _ uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.apps)), nil
}

func (r *fakeAppRepo) removeJob(jobID uuid.UUID) []models.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []models.Application
	for id, a := range r.apps {
		if a.JobID == jobID {
			removed = append(removed, *a)
			delete(r.apps, id)
		}
	}
	return removed
}

func (r *fakeAppRepo) mutate(id uuid.UUID, fn func(*models.Application)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(a)
	r.mutations++
	return nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.Job
	// Dependents removed along with a job, when set.
	apps       *fakeAppRepo
	interviews *fakeInterviewRepo
}

func newFakeJobRepo(jobs ...*models.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: make(map[uuid.UUID]*models.Job)}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) Create(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeJobRepo) FindActiveBySlug(_ context.Context, slug string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Slug == slug && j.Status == models.JobStatusActive {
			cp := *j
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeJobRepo) ListByOwnerWithCounts(_ context.Context, userID uuid.UUID) ([]models.JobWithCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobWithCount
	for _, j := range r.jobs {
		if j.UserID == userID {
			out = append(out, models.JobWithCount{Job: *j})
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateStatus(_ context.Context, id, userID uuid.UUID, status models.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.UserID != userID {
		return repositories.ErrNotFound
	}
	j.Status = status
	return nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id, userID uuid.UUID) ([]models.Application, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok || j.UserID != userID {
		r.mu.Unlock()
		return nil, repositories.ErrNotFound
	}
	delete(r.jobs, id)
	r.mu.Unlock()

	var removed []models.Application
	if r.apps != nil {
		removed = r.apps.removeJob(id)
	}
	if r.interviews != nil {
		r.interviews.removeJob(id)
	}
	return removed, nil
}

func (r *fakeJobRepo) CountByOwner(_ context.Context, userID uuid.UUID) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, active int64
	for _, j := range r.jobs {
		if j.UserID == userID {
			total++
			if j.Status == models.JobStatusActive {
				active++
			}
		}
	}
	return total, active, nil
}

type fakeInterviewRepo struct {
	mu         sync.Mutex
	interviews []models.InterviewSchedule
	appRepo    *fakeAppRepo
}

func (r *fakeInterviewRepo) Schedule(ctx context.Context, iv *models.InterviewSchedule) error {
	if err := r.appRepo.UpdateStatus(ctx, iv.ApplicationID, models.ApplicationStatusInterviewing); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interviews = append(r.interviews, *iv)
	return nil
}

func (r *fakeInterviewRepo) removeJob(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.interviews[:0]
	for _, iv := range r.interviews {
		if iv.JobID != jobID {
			kept = append(kept, iv)
		}
	}
	r.interviews = kept
}

func (r *fakeInterviewRepo) ListByOwnerFrom(_ context.Context, userID uuid.UUID, from time.Time, limit int) ([]models.InterviewSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.InterviewSchedule
	for _, iv := range r.interviews {
		if iv.UserID == userID && !iv.InterviewDate.Before(from) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InterviewDate.Before(out[j].InterviewDate) })
	return out, nil
}

func (r *fakeInterviewRepo) CountScheduledByOwner(ctx context.Context, userID uuid.UUID, from time.Time) (int64, error) {
	list, _ := r.ListByOwnerFrom(ctx, userID, from, 0)
	return int64(len(list)), nil
}

type fakeStorage struct {
	mu          sync.Mutex
	objects     map[string][]byte
	downloadErr error
	uploadErr   error
	downloads   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
}

func (s *fakeStorage) Upload(_ context.Context, path string, r io.Reader, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.put(path, data)
	return nil
}

func (s *fakeStorage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads++
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[path]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *fakeStorage) PublicURL(path string) string {
	return "https://cdn.test/storage/applications/" + path
}

type fakeScorer struct {
	mu      sync.Mutex
	fn      func(prompt string, doc InlineDocument) (string, error)
	calls   int
	lastDoc InlineDocument
}

func (s *fakeScorer) Generate(_ context.Context, prompt string, doc InlineDocument) (string, error) {
	s.mu.Lock()
	s.calls++
	s.lastDoc = doc
	fn := s.fn
	s.mu.Unlock()
	return fn(prompt, doc)
}

func (s *fakeScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func replyWith(text string) func(string, InlineDocument) (string, error) {
	return func(string, InlineDocument) (string, error) { return text, nil }
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []OutboundEmail
	reply json.RawMessage
	err   error
}

func (m *fakeMailer) Send(_ context.Context, email OutboundEmail) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	if m.err != nil {
		return nil, m.err
	}
	if m.reply == nil {
		return json.RawMessage(`{"id":"email-1"}`), nil
	}
	return m.reply, nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeScheduler struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
	delays   []time.Duration
}

func (s *fakeScheduler) Enqueue(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued = append(s.enqueued, id)
	return true
}

func (s *fakeScheduler) EnqueueAfter(id uuid.UUID, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued = append(s.enqueued, id)
	s.delays = append(s.delays, delay)
}
