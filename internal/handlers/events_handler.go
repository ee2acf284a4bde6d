package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"alfredoptarigan/jobpost-ats/internal/services"
)

// EventsHandler streams a job's application events as Server-Sent Events.
type EventsHandler struct {
	jobs      services.JobService
	broker    services.EventBroker
	heartbeat time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

func NewEventsHandler(jobs services.JobService, broker services.EventBroker, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &EventsHandler{
		jobs:      jobs,
		broker:    broker,
		heartbeat: heartbeat,
		done:      make(chan struct{}),
	}
}

// Close ends every open stream so the server can shut down.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleStream handles GET /jobs/:id/events
func (h *EventsHandler) HandleStream(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := h.jobs.GetOwned(c.UserContext(), userID, jobID); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := h.broker.Subscribe(jobID)
	log.Printf("📡 Event stream opened job_id=%s\n", jobID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer log.Printf("📡 Event stream closed job_id=%s\n", jobID)

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-h.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					log.Printf("⚠️  Failed to encode event job_id=%s: %v\n", jobID, err)
					continue
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}

			// a failed flush means the client went away
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

func writeEvent(w io.Writer, ev services.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
