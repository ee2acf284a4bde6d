package main

import (
	"context"
	"fmt"

	"alfredoptarigan/jobpost-ats/internal/config"
	"alfredoptarigan/jobpost-ats/internal/repositories"
	"alfredoptarigan/jobpost-ats/internal/services"
)

type deps struct {
	cfg     *config.Config
	appRepo repositories.ApplicationRepository
	jobRepo repositories.JobRepository
	storage services.StorageService
	gemini  services.GeminiService
}

func loadDeps(ctx context.Context) (*deps, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	var storage services.StorageService
	if cfg.Storage.Backend == "s3" {
		storage, err = services.NewS3StorageService(ctx, cfg.Storage.S3Region, cfg.Storage.S3Bucket,
			cfg.Storage.S3Prefix, cfg.Storage.Bucket, cfg.Storage.PublicURL)
	} else {
		storage, err = services.NewLocalStorageService(cfg.Storage.UploadPath, cfg.Storage.Bucket, cfg.Storage.PublicURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}

	return &deps{
		cfg:     cfg,
		appRepo: repositories.NewApplicationRepository(db),
		jobRepo: repositories.NewJobRepository(db),
		storage: storage,
		gemini:  gemini,
	}, nil
}
