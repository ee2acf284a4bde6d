package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// HandleCreate handles POST /jobs
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.CreateJobRequest
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

	job, err := h.jobs.Create(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleList handles GET /jobs
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}

	jobs, err := h.jobs.ListMine(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if jobs == nil {
		jobs = []models.JobWithCount{}
	}

	return c.JSON(fiber.Map{"jobs": jobs})
}

// HandleGet handles GET /jobs/:id
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	job, err := h.jobs.GetOwned(c.UserContext(), userID, jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(job)
}

// HandleUpdateStatus handles PATCH /jobs/:id/status
func (h *JobHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdateJobStatusRequest
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

	if err := h.jobs.UpdateStatus(c.UserContext(), userID, jobID, models.JobStatus(req.Status)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":     jobID,
		"status": req.Status,
	})
}

// HandleDelete handles DELETE /jobs/:id
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.jobs.Delete(c.UserContext(), userID, jobID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetPublic handles GET /public/jobs/:slug
func (h *JobHandler) HandleGetPublic(c *fiber.Ctx) error {
	job, err := h.jobs.GetPublic(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(job)
}

// HandleDashboardStats handles GET /dashboard/stats
func (h *JobHandler) HandleDashboardStats(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.jobs.DashboardStats(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}
