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
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/handlers"
	"alfredoptarigan/resume-matcher/internal/logger"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

type stores struct {
	candidates repositories.CandidateRepository
	jobs       repositories.JobRepository
	matches    repositories.MatchRepository
}

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := openStores(cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize storage", zap.Error(err))
	}

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zl.Fatal("failed to create upload directory", zap.Error(err))
	}

	gemini, err := services.NewGeminiClient(ctx, cfg.Gemini, zl.Named("gemini"))
	if err != nil {
		zl.Fatal("failed to initialize gemini client", zap.Error(err))
	}
	client := services.NewResilientClient(
		gemini,
		services.NewLimiter(cfg.Gemini.RateLimitRPS, cfg.Gemini.RateLimitBurst),
		services.RetryPolicy{
			MaxAttempts:  cfg.Worker.RetryMaxAttempts,
			InitialDelay: cfg.Worker.RetryInitialDelay,
		},
		zl.Named("inference"),
	)
	zl.Info("gemini client initialized", zap.String("model", gemini.Model()))

	ingestion := services.NewIngestionPipeline(services.NewDocumentExtractor(), client, repos.candidates, zl.Named("ingestion"))
	matcher := services.NewMatchScoringPipeline(repos.jobs, repos.candidates, repos.matches, client, zl.Named("matcher"))
	sorter := services.NewSkillSortService(repos.candidates, client, zl.Named("skills"))

	var (
		index  *services.CandidateIndex
		worker *services.IndexWorker
	)
	if cfg.Qdrant.Enabled() {
		store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zl.Named("qdrant"))
		if err != nil {
			zl.Fatal("failed to initialize qdrant", zap.Error(err))
		}
		if err := store.EnsureCollection(ctx); err != nil {
			zl.Fatal("failed to initialize qdrant collection", zap.Error(err))
		}

		index = services.NewCandidateIndex(store, client, services.NewTextChunker(0, 0), repos.candidates, zl.Named("index"))
		worker = services.NewIndexWorker(index, cfg.Worker.Concurrency, cfg.Worker.QueueSize, zl.Named("worker"))
		worker.Start(ctx)
		ingestion.SetObserver(worker)
	} else {
		zl.Info("QDRANT_URL not set, candidate index disabled")
	}

	candidateHandler := handlers.NewCandidateHandler(ingestion, sorter, repos.candidates, storageService, cfg.Storage.MaxFileSize, zl.Named("http"))
	// A nil *CandidateIndex must not reach the handler as a non-nil interface.
	jobHandler := handlers.NewJobHandler(repos.jobs, nil, zl.Named("http"))
	if index != nil {
		jobHandler = handlers.NewJobHandler(repos.jobs, index, zl.Named("http"))
	}
	matchHandler := handlers.NewMatchHandler(matcher, zl.Named("http"))

	app := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Gemini.Timeout,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler(zl),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.RegisterRoutes(app, candidateHandler, jobHandler, matchHandler)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resume/upload",
				"GET /api/v1/resume/all",
				"GET /api/v1/resume/:candidate_id/sort",
				"POST /api/v1/jobs",
				"GET /api/v1/jobs/list",
				"GET /api/v1/jobs/:job_id",
				"GET /api/v1/jobs/:job_id/candidates",
				"GET /api/v1/match/all",
				"GET /api/v1/match/:job_id/:candidate_id",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zl.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server starting", zap.String("addr", addr), zap.String("store", cfg.Database.Backend))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}

	if worker != nil {
		worker.Stop()
	}
}

func openStores(cfg *config.Config, zl *zap.Logger) (*stores, error) {
	if cfg.Database.Backend == "memory" {
		zl.Warn("using in-memory store, data is lost on restart")
		return &stores{
			candidates: repositories.NewMemoryCandidateRepository(),
			jobs:       repositories.NewMemoryJobRepository(),
			matches:    repositories.NewMemoryMatchRepository(),
		}, nil
	}

	db, err := config.InitDatabase(cfg, zl)
	if err != nil {
		return nil, err
	}
	return &stores{
		candidates: repositories.NewCandidateRepository(db),
		jobs:       repositories.NewJobRepository(db),
		matches:    repositories.NewMatchRepository(db),
	}, nil
}
