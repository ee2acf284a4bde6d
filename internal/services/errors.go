package services

import "errors"

// Screening failure kinds. Each maps to one HTTP status in the handlers.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrResumeNotReady      = errors.New("resume not uploaded yet")
	ErrAlreadyScreened     = errors.New("application already screened")
	ErrDownloadFailed      = errors.New("failed to download resume")
	ErrFileTooLarge        = errors.New("resume file too large")
	ErrJobNotFound         = errors.New("job not found")
	ErrInvalidAIResponse   = errors.New("invalid AI response")
	ErrPersistenceFailed   = errors.New("failed to save screening result")
)

var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrObjectNotFound   = errors.New("object not found")
	ErrUnknownTemplate  = errors.New("invalid email template specified")
	ErrMissingFields    = errors.New("missing required fields: to, subject, template")
	ErrUnsupportedFile  = errors.New("unsupported resume file type")
	ErrIndexDisabled    = errors.New("candidate index is not configured")
	ErrInvalidSchedule  = errors.New("invalid interview date or time")
)
