package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/jobpost-ats/internal/repositories"
)

type ScreeningResult struct {
	ApplicationID uuid.UUID `json:"applicationId"`
	Score         int       `json:"score"`
	Summary       string    `json:"summary"`
}

// ScreeningService scores one application's resume against its job posting
// and stores the verdict on the application.
type ScreeningService interface {
	Screen(ctx context.Context, applicationID uuid.UUID) (*ScreeningResult, error)
}

type ScreeningOptions struct {
	Bucket      string
	MaxFileSize int64
	Timeout     time.Duration
}

type screeningService struct {
	appRepo       repositories.ApplicationRepository
	jobRepo       repositories.JobRepository
	storage       StorageService
	scorer        Scorer
	promptBuilder *PromptBuilder
	opts          ScreeningOptions
}

func NewScreeningService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	storage StorageService,
	scorer Scorer,
	opts ScreeningOptions,
) ScreeningService {
	if opts.Bucket == "" {
		opts.Bucket = "applications"
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 10 << 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return &screeningService{
		appRepo:       appRepo,
		jobRepo:       jobRepo,
		storage:       storage,
		scorer:        scorer,
		promptBuilder: NewPromptBuilder(),
		opts:          opts,
	}
}

func (s *screeningService) Screen(ctx context.Context, applicationID uuid.UUID) (*ScreeningResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	log.Printf("🔄 Screening started application_id=%s\n", applicationID)

	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, lookupError(ErrApplicationNotFound, err)
	}
	if !app.ResumeReady() {
		return nil, ErrResumeNotReady
	}
	if app.Screened() {
		return nil, ErrAlreadyScreened
	}

	objectPath, err := ResolveStoragePath(app.ResumeURL, s.opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	data, err := s.download(ctx, objectPath)
	if err != nil {
		return nil, err
	}
	log.Printf("📥 Resume downloaded application_id=%s path=%s size_bytes=%d\n", applicationID, objectPath, len(data))

	doc := InlineDocument{
		MIMEType: ResumeMIMEType(objectPath),
		Data:     base64.StdEncoding.EncodeToString(data),
	}

	job, err := s.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, lookupError(ErrJobNotFound, err)
	}

	prompt := s.promptBuilder.BuildScreeningPrompt(job.Title, job.Description, job.Requirements)
	text, err := s.scorer.Generate(ctx, prompt, doc)
	if err != nil {
		log.Printf("❌ Screening model call failed application_id=%s: %v\n", applicationID, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidAIResponse, err)
	}

	screening, err := ParseAIScreening(text)
	if err != nil {
		log.Printf("❌ Unusable model answer application_id=%s raw=%q: %v\n", applicationID, truncate(text, 150), err)
		return nil, err
	}

	update := repositories.ScreeningUpdate{
		Score:       screening.RoundedScore(),
		Summary:     screening.Summary,
		RawResponse: screening.Raw,
	}
	if err := s.appRepo.SaveScreeningResult(ctx, applicationID, update); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrAlreadyScreened
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	log.Printf("✅ Screening completed application_id=%s score=%d\n", applicationID, update.Score)

	return &ScreeningResult{
		ApplicationID: applicationID,
		Score:         update.Score,
		Summary:       update.Summary,
	}, nil
}

// download reads at most MaxFileSize+1 bytes so an oversized file is detected
// without buffering all of it.
func (s *screeningService) download(ctx context.Context, objectPath string) ([]byte, error) {
	rc, err := s.storage.Download(ctx, objectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.opts.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	if int64(len(data)) > s.opts.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// lookupError reports a missing row as notFound and anything else as a store failure.
func lookupError(notFound, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %w", notFound, err)
	}
	return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
}

var resumeMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeMIMEType maps a resume file name to its media type, defaulting to PDF.
func ResumeMIMEType(name string) string {
	if mt, ok := resumeMIMETypes[strings.ToLower(path.Ext(name))]; ok {
		return mt
	}
	return resumeMIMETypes[".pdf"]
}

// ResumeExtension returns the normalized extension of an accepted resume file.
func ResumeExtension(name string) (string, error) {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := resumeMIMETypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	return ext, nil
}
