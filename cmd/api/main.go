package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/jobpost-ats/internal/config"
	"alfredoptarigan/jobpost-ats/internal/handlers"
	"alfredoptarigan/jobpost-ats/internal/repositories"
	"alfredoptarigan/jobpost-ats/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	jobRepo := repositories.NewJobRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)
	log.Println("✅ Repositories initialized successfully")

	storageService, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	log.Printf("✅ Storage initialized backend=%s\n", cfg.Storage.Backend)

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Qdrant is optional; without it candidate search answers 503
	var vectorStore services.VectorStore
	if cfg.Qdrant.URL != "" {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		vectorStore = qdrantService
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("⚠️  QDRANT_URL not set, candidate search disabled")
	}

	candidateIndex := services.NewCandidateIndex(services.CandidateIndexDeps{
		AppRepo:     appRepo,
		JobRepo:     jobRepo,
		Storage:     storageService,
		Extractor:   services.NewPDFParserService(),
		Chunker:     services.NewTextChunker(),
		Embedder:    geminiService,
		Store:       vectorStore,
		Bucket:      cfg.Storage.Bucket,
		MaxFileSize: cfg.Screening.MaxFileSize,
	})

	if cfg.Email.ResendAPIKey == "" {
		log.Println("⚠️  RESEND_API_KEY not set, email delivery will be rejected upstream")
	}
	notifier := services.NewNotifier(
		services.NewResendMailer(cfg.Email.APIURL, cfg.Email.ResendAPIKey),
		cfg.Email.From,
	)

	broker := services.NewEventBroker(32)

	screeningService := services.NewScreeningService(
		appRepo,
		jobRepo,
		storageService,
		geminiService,
		services.ScreeningOptions{
			Bucket:      cfg.Storage.Bucket,
			MaxFileSize: cfg.Screening.MaxFileSize,
			Timeout:     cfg.Screening.Timeout,
		},
	)

	var indexer services.CandidateIndexer
	if vectorStore != nil {
		indexer = candidateIndex
	}

	// Initialize worker
	worker := services.NewWorker(appRepo, screeningService, broker, indexer, services.WorkerOptions{
		Concurrency:  cfg.Screening.Concurrency,
		PollInterval: cfg.Screening.PollInterval,
		Grace:        cfg.Screening.Grace,
	})
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	jobService := services.NewJobService(jobRepo, appRepo, interviewRepo, services.JobArtifacts{
		Storage: storageService,
		Index:   candidateIndex,
		Bucket:  cfg.Storage.Bucket,
	})
	applicationService := services.NewApplicationService(
		appRepo,
		jobRepo,
		jobService,
		storageService,
		notifier,
		worker,
		broker,
		services.ApplicationOptions{
			MaxUploadSize:  cfg.Storage.MaxUploadSize,
			ScreeningDelay: cfg.Screening.Delay,
		},
	)
	interviewService := services.NewInterviewService(interviewRepo, appRepo, jobRepo, broker, time.Local)

	// Initialize Handlers
	screeningHandler := handlers.NewScreeningHandler(screeningService)
	emailHandler := handlers.NewEmailHandler(notifier)
	jobHandler := handlers.NewJobHandler(jobService)
	var searchIndex services.CandidateIndex
	if vectorStore != nil {
		searchIndex = candidateIndex
	}
	applicationHandler := handlers.NewApplicationHandler(applicationService, jobService, searchIndex)
	interviewHandler := handlers.NewInterviewHandler(interviewService)
	eventsHandler := handlers.NewEventsHandler(jobService, broker, 15*time.Second)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "JobPost ATS API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxUploadSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// The function endpoints answer CORS themselves, so they sit before the
	// CORS middleware.
	functions := app.Group("/functions/v1")
	functions.Post("/ai-screen-resume", screeningHandler.HandleScreen)
	functions.Options("/send-email", emailHandler.HandlePreflight)
	functions.Post("/send-email", emailHandler.HandleSendEmail)

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + handlers.UserIDHeader,
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Public endpoints
	api.Get("/public/jobs/:slug", jobHandler.HandleGetPublic)
	api.Post("/public/jobs/:slug/apply", applicationHandler.HandleApply)

	// Recruiter endpoints
	api.Get("/dashboard/stats", jobHandler.HandleDashboardStats)
	api.Post("/jobs", jobHandler.HandleCreate)
	api.Get("/jobs", jobHandler.HandleList)
	api.Get("/jobs/:id", jobHandler.HandleGet)
	api.Patch("/jobs/:id/status", jobHandler.HandleUpdateStatus)
	api.Delete("/jobs/:id", jobHandler.HandleDelete)
	api.Get("/jobs/:id/applications", applicationHandler.HandleListForJob)
	api.Get("/jobs/:id/applications/search", applicationHandler.HandleSearch)
	api.Get("/jobs/:id/events", eventsHandler.HandleStream)
	api.Patch("/applications/:id/status", applicationHandler.HandleUpdateStatus)
	api.Post("/applications/:id/screen", applicationHandler.HandleTriggerScreening)
	api.Post("/applications/:id/interviews", interviewHandler.HandleSchedule)
	api.Get("/interviews", interviewHandler.HandleList)

	// Local uploads are served so resume URLs resolve
	if cfg.Storage.Backend == "local" {
		app.Static("/storage", cfg.Storage.UploadPath)
	}

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "JobPost ATS API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /functions/v1/ai-screen-resume",
				"POST /functions/v1/send-email",
				"GET /api/v1/public/jobs/:slug",
				"POST /api/v1/public/jobs/:slug/apply",
				"GET /api/v1/dashboard/stats",
				"POST /api/v1/jobs",
				"GET /api/v1/jobs",
				"GET /api/v1/jobs/:id",
				"PATCH /api/v1/jobs/:id/status",
				"DELETE /api/v1/jobs/:id",
				"GET /api/v1/jobs/:id/applications",
				"GET /api/v1/jobs/:id/applications/search?q=",
				"GET /api/v1/jobs/:id/events",
				"PATCH /api/v1/applications/:id/status",
				"POST /api/v1/applications/:id/screen",
				"POST /api/v1/applications/:id/interviews",
				"GET /api/v1/interviews",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		eventsHandler.Close()
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func newStorage(ctx context.Context, cfg *config.Config) (services.StorageService, error) {
	if cfg.Storage.Backend == "s3" {
		return services.NewS3StorageService(
			ctx,
			cfg.Storage.S3Region,
			cfg.Storage.S3Bucket,
			cfg.Storage.S3Prefix,
			cfg.Storage.Bucket,
			cfg.Storage.PublicURL,
		)
	}
	return services.NewLocalStorageService(cfg.Storage.UploadPath, cfg.Storage.Bucket, cfg.Storage.PublicURL)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
