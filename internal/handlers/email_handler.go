package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/services"
)

type EmailHandler struct {
	notifier services.Notifier
}

func NewEmailHandler(notifier services.Notifier) *EmailHandler {
	return &EmailHandler{notifier: notifier}
}

func setEmailCORS(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "authorization, x-client-info, apikey, content-type")
}

// HandlePreflight handles OPTIONS /functions/v1/send-email
func (h *EmailHandler) HandlePreflight(c *fiber.Ctx) error {
	setEmailCORS(c)
	return c.SendString("ok")
}

// HandleSendEmail handles POST /functions/v1/send-email
func (h *EmailHandler) HandleSendEmail(c *fiber.Ctx) error {
	setEmailCORS(c)

	// Browser callers may post JSON as text/plain, so the body is decoded
	// whatever its Content-Type.
	var req models.SendEmailRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	body, err := h.notifier.Send(c.UserContext(), req)
	if err != nil {
		var delivery *services.DeliveryError
		switch {
		case errors.Is(err, services.ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing required fields: to, subject, template",
			})
		case errors.Is(err, services.ErrUnknownTemplate):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid email template specified",
			})
		case errors.As(err, &delivery):
			log.Printf("❌ Email API error status=%d: %s\n", delivery.StatusCode, delivery.Message)
			return c.Status(delivery.StatusCode).JSON(fiber.Map{
				"error": delivery.Message,
			})
		}

		log.Printf("❌ Failed to send email: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}
