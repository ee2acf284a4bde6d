package handlers

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/services"
)

// UserIDHeader carries the recruiter identity; authentication happens upstream.
const UserIDHeader = "X-User-Id"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// validateStruct returns a client-facing message for the first invalid field.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Errorf("%s must be a valid email address", fe.Field())
	case "url":
		return fmt.Errorf("%s must be a valid URL", fe.Field())
	case "uuid":
		return fmt.Errorf("%s must be a valid UUID", fe.Field())
	case "datetime":
		return fmt.Errorf("%s must match the format %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}

func recruiterID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Get(UserIDHeader))
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, UserIDHeader+" header is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid "+UserIDHeader+" header")
	}
	return id, nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
	}
	return id, nil
}

// respondError maps service errors onto the recruiter and public APIs.
func respondError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	status, message := fiber.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		status, message = fiber.StatusNotFound, "Job not found"
	case errors.Is(err, services.ErrApplicationNotFound):
		status, message = fiber.StatusNotFound, "Application not found"
	case errors.Is(err, services.ErrUnsupportedFile):
		status, message = fiber.StatusBadRequest, "Resume must be a PDF, DOC or DOCX file"
	case errors.Is(err, services.ErrFileTooLarge):
		status, message = fiber.StatusRequestEntityTooLarge, "Resume file too large"
	case errors.Is(err, services.ErrResumeNotReady):
		status, message = fiber.StatusConflict, "Resume not uploaded yet"
	case errors.Is(err, services.ErrAlreadyScreened):
		status, message = fiber.StatusConflict, "Application already screened"
	case errors.Is(err, services.ErrInvalidSchedule):
		status, message = fiber.StatusBadRequest, "Invalid interview date or time"
	case errors.Is(err, services.ErrIndexDisabled):
		status, message = fiber.StatusServiceUnavailable, "Candidate search is not configured"
	default:
		log.Printf("❌ %s %s failed: %v\n", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
