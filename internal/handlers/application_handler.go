package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/services"
)

type ApplicationHandler struct {
	apps  services.ApplicationService
	jobs  services.JobService
	index services.CandidateIndex
}

// NewApplicationHandler builds the handler. index may be nil when candidate
// search is not configured.
func NewApplicationHandler(
	apps services.ApplicationService,
	jobs services.JobService,
	index services.CandidateIndex,
) *ApplicationHandler {
	return &ApplicationHandler{
		apps:  apps,
		jobs:  jobs,
		index: index,
	}
}

// HandleApply handles POST /public/jobs/:slug/apply
func (h *ApplicationHandler) HandleApply(c *fiber.Ctx) error {
	var req models.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}
	if err := validateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	body, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read resume file",
		})
	}
	defer body.Close()

	app, err := h.apps.Apply(c.UserContext(), c.Params("slug"), req, services.ResumeUpload{
		Filename: file.Filename,
		Size:     file.Size,
		Body:     body,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.ApplyResponse{
		ID:      app.ID.String(),
		Status:  string(app.Status),
		Message: "Application submitted successfully",
	})
}

// HandleListForJob handles GET /jobs/:id/applications
func (h *ApplicationHandler) HandleListForJob(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	apps, err := h.apps.ListForJob(c.UserContext(), userID, jobID)
	if err != nil {
		return respondError(c, err)
	}
	if apps == nil {
		apps = []models.Application{}
	}

	return c.JSON(fiber.Map{"applications": apps})
}

// HandleUpdateStatus handles PATCH /applications/:id/status
func (h *ApplicationHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdateApplicationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if err := validateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	app, err := h.apps.UpdateStatus(c.UserContext(), userID, appID, models.ApplicationStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(app)
}

// HandleTriggerScreening handles POST /applications/:id/screen
func (h *ApplicationHandler) HandleTriggerScreening(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	queued, err := h.apps.TriggerScreening(c.UserContext(), userID, appID)
	if err != nil {
		return respondError(c, err)
	}

	status := "queued"
	if !queued {
		status = "already_pending"
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":     appID,
		"status": status,
	})
}

// HandleSearch handles GET /jobs/:id/applications/search?q=
func (h *ApplicationHandler) HandleSearch(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}
	if h.index == nil {
		return respondError(c, services.ErrIndexDisabled)
	}

	if _, err := h.jobs.GetOwned(c.UserContext(), userID, jobID); err != nil {
		return respondError(c, err)
	}

	matches, err := h.index.Search(c.UserContext(), jobID, query, c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	if matches == nil {
		matches = []models.CandidateMatch{}
	}

	return c.JSON(fiber.Map{"results": matches})
}
