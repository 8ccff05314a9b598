package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/bootstrap"
	"talentalign/jd-matcher/internal/config"
	"talentalign/jd-matcher/internal/handlers"
	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/repositories"
	"talentalign/jd-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if !cfg.EnvFileLoaded {
		log.Info("no .env file found, using environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	docRepo := repositories.NewDocumentRepository(db)
	runRepo := repositories.NewMatchRunRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}
	pdfParser := services.NewPDFParserService()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, err := bootstrap.NewCore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize matching pipeline", zap.Error(err))
	}
	log.Info("pipeline ready",
		zap.String(logger.FieldModel, cfg.Gemini.Model),
		zap.String("embedding_model", cfg.Gemini.EmbeddingModel),
		zap.String("collection", cfg.Qdrant.Collection),
	)

	analysisService := services.NewAnalysisService(
		core.Pipeline.Matcher,
		core.Store,
		core.Pipeline.Similarity,
		runRepo,
		docRepo,
		pdfParser,
		services.AnalysisConfig{TopN: cfg.Scoring.TopN, SearchLimit: cfg.Scoring.SearchLimit},
		log,
	)

	worker := services.NewWorker(runRepo, analysisService, services.WorkerConfig{
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
	}, log)
	worker.Start(ctx)

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, cfg.Storage.MaxFileSize, log)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, pdfParser, cfg.Storage.MaxFileSize, log)
	jobHandler := handlers.NewJobHandler(core.Catalog, pdfParser, cfg.Storage.MaxFileSize, cfg.Scoring.MinJobTextLength, log)
	matchRunHandler := handlers.NewMatchRunHandler(runRepo, docRepo, worker, log)
	resultHandler := handlers.NewResultHandler(runRepo)

	app := fiber.New(fiber.Config{
		AppName:      "JD Matcher API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 4,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":           "healthy",
			"time":             time.Now(),
			"cached_responses": core.Pipeline.LLM.CachedResponses(),
		})
	})

	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/analyze-resume", analysisHandler.HandleAnalyzeResume)
	api.Post("/missing-skills", analysisHandler.HandleMissingSkills)
	api.Get("/jds", jobHandler.HandleList)
	api.Post("/jds", jobHandler.HandleCreate)
	api.Delete("/jds/:id", jobHandler.HandleDelete)
	api.Post("/bulk-analyze", matchRunHandler.HandleBulkAnalyze)
	api.Get("/result/:id", resultHandler.HandleGetResult)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "JD Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/analyze-resume",
				"POST /api/v1/missing-skills",
				"GET /api/v1/jds",
				"POST /api/v1/jds",
				"DELETE /api/v1/jds/:id",
				"POST /api/v1/bulk-analyze",
				"GET /api/v1/result/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		worker.Stop()
		cancel()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
