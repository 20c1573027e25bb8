package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/logger"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

// Ingests every .pdf, .docx and .txt resume under a directory into the
// configured database, indexing each one when QDRANT_URL is set.
func main() {
	dir := flag.String("dir", "./resumes", "directory with resume files")
	flag.Parse()

	cfg := config.Load()

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		panic(err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	db, err := config.InitDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	candidates := repositories.NewCandidateRepository(db)

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

	pipeline := services.NewIngestionPipeline(services.NewDocumentExtractor(), client, candidates, zl.Named("ingestion"))

	var index *services.CandidateIndex
	if cfg.Qdrant.Enabled() {
		store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zl.Named("qdrant"))
		if err != nil {
			zl.Fatal("failed to initialize qdrant", zap.Error(err))
		}
		if err := store.EnsureCollection(ctx); err != nil {
			zl.Fatal("failed to initialize qdrant collection", zap.Error(err))
		}
		index = services.NewCandidateIndex(store, client, services.NewTextChunker(0, 0), candidates, zl.Named("index"))
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		zl.Fatal("failed to read resume directory", zap.String("dir", *dir), zap.Error(err))
	}

	successCount, failCount := 0, 0

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		if _, err := services.DetectFileType(entry.Name()); err != nil {
			zl.Debug("skipping unsupported file", zap.String("path", path))
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			zl.Error("failed to read file", zap.String("path", path), zap.Error(err))
			failCount++
			continue
		}

		candidate, err := pipeline.Ingest(ctx, data, entry.Name())
		if err != nil {
			zl.Error("failed to ingest resume", zap.String("path", path), zap.Error(err))
			failCount++
			continue
		}

		if index != nil {
			if err := index.IndexCandidate(ctx, candidate); err != nil {
				zl.Warn("failed to index resume", zap.String("candidate_id", candidate.ID.String()), zap.Error(err))
			}
		}

		zl.Info("resume ingested", zap.String("path", path), zap.String("candidate_id", candidate.ID.String()))
		successCount++
	}

	zl.Info("ingestion summary", zap.Int("successful", successCount), zap.Int("failed", failCount))

	if failCount > 0 {
		zl.Sync() //nolint:errcheck
		os.Exit(1)
	}
}
