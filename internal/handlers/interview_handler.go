package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/services"
)

type InterviewHandler struct {
	interviews services.InterviewService
}

func NewInterviewHandler(interviews services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// HandleSchedule handles POST /applications/:id/interviews
func (h *InterviewHandler) HandleSchedule(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req models.ScheduleInterviewRequest
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

	interview, err := h.interviews.Schedule(c.UserContext(), userID, appID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(interview)
}

// HandleList handles GET /interviews
func (h *InterviewHandler) HandleList(c *fiber.Ctx) error {
	userID, err := recruiterID(c)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.interviews.ListForRecruiter(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}
