package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/models"
)

const (
	EventApplicationCreated = "application.created"
	EventApplicationUpdated = "application.updated"
	EventInterviewScheduled = "interview.scheduled"
)

// Event is a change notification for one job's application list.
type Event struct {
	Type        string                    `json:"type"`
	JobID       uuid.UUID                 `json:"job_id"`
	Application *models.Application       `json:"application,omitempty"`
	Interview   *models.InterviewSchedule `json:"interview,omitempty"`
	At          time.Time                 `json:"at"`
}

type EventBroker interface {
	Publish(ev Event)
	// Subscribe returns a channel of events for jobID and a func that
	// unsubscribes and closes the channel.
	Subscribe(jobID uuid.UUID) (<-chan Event, func())
}

type eventBroker struct {
	mu         sync.RWMutex
	subs       map[uuid.UUID]map[chan Event]struct{}
	bufferSize int
}

func NewEventBroker(bufferSize int) EventBroker {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &eventBroker{
		subs:       make(map[uuid.UUID]map[chan Event]struct{}),
		bufferSize: bufferSize,
	}
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (b *eventBroker) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[ev.JobID] {
		select {
		case ch <- ev:
		default:
			log.Printf("⚠️  Dropping %s event for slow subscriber job_id=%s\n", ev.Type, ev.JobID)
		}
	}
}

func (b *eventBroker) Subscribe(jobID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, b.bufferSize)

	b.mu.Lock()
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan Event]struct{})
	}
	b.subs[jobID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[jobID], ch)
			if len(b.subs[jobID]) == 0 {
				delete(b.subs, jobID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// publishApplication is a nil-safe helper for services holding an optional broker.
func publishApplication(b EventBroker, eventType string, app *models.Application) {
	if b == nil || app == nil {
		return
	}
	b.Publish(Event{Type: eventType, JobID: app.JobID, Application: app})
}
