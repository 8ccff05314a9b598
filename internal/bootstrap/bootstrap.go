// Package bootstrap wires the scoring pipeline and job catalog from config.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/config"
	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/services"
)

// Core holds the components shared by the API server and the CLI.
type Core struct {
	Gemini   services.GeminiService
	Store    services.VectorStore
	Pipeline *services.Pipeline
	Catalog  services.JobCatalogService
}

func PipelineConfig(cfg *config.Config) services.PipelineConfig {
	return services.PipelineConfig{
		Gateway: services.GatewayConfig{
			Model:       cfg.Gemini.Model,
			Temperature: cfg.Gemini.Temperature,
			Seed:        cfg.Gemini.Seed,
			Timeout:     cfg.Gemini.Timeout,
			MaxAttempts: cfg.Gemini.MaxAttempts,
		},
		EmbeddingModel:   cfg.Gemini.EmbeddingModel,
		EmbeddingTimeout: cfg.Gemini.Timeout,
		Blend: services.ScoreBlend{
			JudgeWeight:     cfg.Scoring.JudgeWeight,
			EmbeddingWeight: cfg.Scoring.EmbeddingWeight,
			MinScore:        cfg.Scoring.MinSectionScore,
		},
		Matcher: services.MatcherConfig{
			Weights: models.WeightSet{
				Skills:     cfg.Scoring.SkillsWeight,
				Experience: cfg.Scoring.ExperienceWeight,
				Education:  cfg.Scoring.EducationWeight,
			},
			Concurrency: cfg.Scoring.BatchConcurrency,
		},
	}
}

// NewCore connects to Gemini and Qdrant and makes sure the collection exists.
func NewCore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Core, error) {
	gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbeddingModel, cfg.Gemini.RetryInitialDelay, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}

	store, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, cfg.Qdrant.VectorSize, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
	}
	if err := store.InitCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
	}

	pipeline := services.NewPipeline(gemini, gemini, PipelineConfig(cfg), log)

	return &Core{
		Gemini:   gemini,
		Store:    store,
		Pipeline: pipeline,
		Catalog:  services.NewJobCatalogService(store, pipeline.Similarity, cfg.Scoring.DuplicateThreshold, log),
	}, nil
}
