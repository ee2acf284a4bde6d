package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/repositories"
)

// Worker runs screenings in the background so submitting an application
// never waits on the model.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	// Enqueue reports false when the application is already queued or
	// running, or the worker is stopped or full.
	Enqueue(applicationID uuid.UUID) bool
	EnqueueAfter(applicationID uuid.UUID, delay time.Duration)
}

type WorkerOptions struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
	// Grace is how old an unscreened application must be before the poller
	// picks it up, leaving time for its own deferred trigger.
	Grace     time.Duration
	PollBatch int
}

// CandidateIndexer is notified of every successful screening.
type CandidateIndexer interface {
	IndexApplication(ctx context.Context, applicationID uuid.UUID) error
}

type worker struct {
	appRepo   repositories.ApplicationRepository
	screening ScreeningService
	events    EventBroker
	indexer   CandidateIndexer
	jobQueue  chan uuid.UUID
	opts      WorkerOptions

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewWorker(
	appRepo repositories.ApplicationRepository,
	screening ScreeningService,
	events EventBroker,
	indexer CandidateIndexer,
	opts WorkerOptions,
) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.PollBatch <= 0 {
		opts.PollBatch = 10
	}

	return &worker{
		appRepo:   appRepo,
		screening: screening,
		events:    events,
		indexer:   indexer,
		jobQueue:  make(chan uuid.UUID, opts.QueueSize),
		opts:      opts,
		inFlight:  make(map[uuid.UUID]struct{}),
		stopChan:  make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting screening worker with %d concurrent workers\n", w.opts.Concurrency)

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.opts.PollInterval > 0 {
		w.wg.Add(1)
		go w.pollUnscreened(ctx)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping screening worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Screening worker stopped")
	})
}

// Enqueue implements Worker.
func (w *worker) Enqueue(applicationID uuid.UUID) bool {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue application_id=%s\n", applicationID)
		return false
	default:
	}

	w.mu.Lock()
	if _, busy := w.inFlight[applicationID]; busy {
		w.mu.Unlock()
		log.Printf("⚠️  Screening already pending application_id=%s\n", applicationID)
		return false
	}
	w.inFlight[applicationID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.jobQueue <- applicationID:
		log.Printf("📥 Screening enqueued application_id=%s\n", applicationID)
		return true
	default:
		w.release(applicationID)
		log.Printf("⚠️  Screening queue full, leaving application_id=%s to the poller\n", applicationID)
		return false
	}
}

// EnqueueAfter implements Worker.
func (w *worker) EnqueueAfter(applicationID uuid.UUID, delay time.Duration) {
	if delay <= 0 {
		w.Enqueue(applicationID)
		return
	}
	time.AfterFunc(delay, func() { w.Enqueue(applicationID) })
}

func (w *worker) release(applicationID uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, applicationID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case applicationID := <-w.jobQueue:
			w.handle(ctx, workerID, applicationID)
		}
	}
}

func (w *worker) handle(ctx context.Context, workerID int, applicationID uuid.UUID) {
	defer w.release(applicationID)

	log.Printf("👷 Worker #%d screening application_id=%s\n", workerID, applicationID)

	_, err := w.screening.Screen(ctx, applicationID)
	if err != nil {
		log.Printf("❌ Worker #%d screening failed application_id=%s: %v\n", workerID, applicationID, err)
		if shouldRecordFailure(err) {
			if recErr := w.appRepo.RecordScreeningError(ctx, applicationID, truncate(err.Error(), 500)); recErr != nil {
				log.Printf("⚠️  Failed to record screening error application_id=%s: %v\n", applicationID, recErr)
			}
		}
		return
	}

	app, err := w.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		log.Printf("⚠️  Failed to reload screened application_id=%s: %v\n", applicationID, err)
		return
	}
	publishApplication(w.events, EventApplicationUpdated, app)

	if w.indexer != nil {
		if err := w.indexer.IndexApplication(ctx, applicationID); err != nil && !errors.Is(err, ErrIndexDisabled) {
			log.Printf("⚠️  Failed to index candidate application_id=%s: %v\n", applicationID, err)
		}
	}
}

// shouldRecordFailure leaves out outcomes that are not a failed screening of
// an existing, ready application.
func shouldRecordFailure(err error) bool {
	switch {
	case errors.Is(err, ErrAlreadyScreened),
		errors.Is(err, ErrApplicationNotFound),
		errors.Is(err, ErrResumeNotReady),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func (w *worker) pollUnscreened(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting unscreened applications poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Unscreened applications poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			apps, err := w.appRepo.FindUnscreened(ctx, time.Now().Add(-w.opts.Grace), w.opts.PollBatch)
			if err != nil {
				log.Printf("⚠️  Failed to fetch unscreened applications: %v\n", err)
				continue
			}

			if len(apps) > 0 {
				log.Printf("📋 Found %d unscreened applications\n", len(apps))
			}

			for _, app := range apps {
				w.Enqueue(app.ID)
			}
		}
	}
}
