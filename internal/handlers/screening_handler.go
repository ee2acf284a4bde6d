package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/services"
)

type ScreeningHandler struct {
	screening services.ScreeningService
}

func NewScreeningHandler(screening services.ScreeningService) *ScreeningHandler {
	return &ScreeningHandler{screening: screening}
}

// HandleScreen handles POST /functions/v1/ai-screen-resume
func (h *ScreeningHandler) HandleScreen(c *fiber.Ctx) error {
	var req models.ScreenRequest

	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ScreenResponse{
			Error: "Invalid request payload",
		})
	}

	if err := validateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ScreenResponse{
			Error: err.Error(),
		})
	}
	applicationID, err := uuid.Parse(req.ApplicationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ScreenResponse{
			Error: "applicationId must be a valid UUID",
		})
	}

	result, err := h.screening.Screen(c.UserContext(), applicationID)
	if err != nil {
		status, message := screeningFailure(err)
		log.Printf("❌ Screening request failed application_id=%s status=%d: %v\n", applicationID, status, err)
		return c.Status(status).JSON(models.ScreenResponse{
			Error: message,
		})
	}

	return c.JSON(models.ScreenResponse{
		Success:       true,
		ApplicationID: result.ApplicationID.String(),
		Score:         &result.Score,
		Summary:       result.Summary,
	})
}

// screeningFailure picks the status and client message for a failure kind.
// Details stay in the log.
func screeningFailure(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrApplicationNotFound):
		return fiber.StatusNotFound, "Application not found"
	case errors.Is(err, services.ErrJobNotFound):
		return fiber.StatusNotFound, "Job not found"
	case errors.Is(err, services.ErrResumeNotReady):
		return fiber.StatusConflict, "Resume not uploaded yet"
	case errors.Is(err, services.ErrAlreadyScreened):
		return fiber.StatusConflict, "Application already screened"
	case errors.Is(err, services.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge, "Resume file too large"
	case errors.Is(err, services.ErrDownloadFailed):
		return fiber.StatusBadGateway, "Failed to download resume"
	case errors.Is(err, services.ErrInvalidAIResponse):
		return fiber.StatusBadGateway, "Invalid AI response"
	case errors.Is(err, services.ErrPersistenceFailed):
		return fiber.StatusInternalServerError, "Failed to save screening result"
	}
	return fiber.StatusInternalServerError, "Screening failed"
}
