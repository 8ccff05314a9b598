package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
)

// ContentGenerator is the provider surface the gateway needs.
type ContentGenerator interface {
	GenerateContentWithRetry(ctx context.Context, req GenerateRequest, maxAttempts int) (string, error)
}

type GatewayConfig struct {
	Model       string
	Temperature float32
	Seed        int32
	Timeout     time.Duration
	MaxAttempts int
}

// LLMRequest is a prompt addressed to the gateway. An empty Model uses the default.
type LLMRequest struct {
	Prompt string
	Model  string
	JSON   bool
}

// LLMGateway is the single entry point to the LLM. Completions are memoized
// by (model, temperature, seed, prompt) for the life of the process.
type LLMGateway struct {
	generator ContentGenerator
	cache     *Memo[CacheKey, string]
	cfg       GatewayConfig
	log       *zap.Logger
}

func NewLLMGateway(generator ContentGenerator, cfg GatewayConfig, log *zap.Logger) *LLMGateway {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &LLMGateway{
		generator: generator,
		cache:     NewMemo[CacheKey, string](),
		cfg:       cfg,
		log:       logger.OrNop(log),
	}
}

func (g *LLMGateway) modelFor(req LLMRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return g.cfg.Model
}

// Complete returns the provider's answer for req, or the error that prevented it.
func (g *LLMGateway) Complete(ctx context.Context, req LLMRequest) (string, error) {
	model := g.modelFor(req)
	key := CacheKey{
		Model:       model,
		Temperature: g.cfg.Temperature,
		Seed:        g.cfg.Seed,
		Prompt:      req.Prompt,
	}

	return g.cache.Get(key, func() (string, error) {
		// The result is shared by every waiter on this key, so one caller's
		// cancellation must not fail the others.
		callCtx := context.WithoutCancel(ctx)
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, g.cfg.Timeout)
			defer cancel()
		}

		return g.generator.GenerateContentWithRetry(callCtx, GenerateRequest{
			Prompt:      req.Prompt,
			Model:       model,
			Temperature: g.cfg.Temperature,
			Seed:        g.cfg.Seed,
			JSON:        req.JSON,
		}, g.cfg.MaxAttempts)
	})
}

// Call is Complete that fails soft: any error yields "".
func (g *LLMGateway) Call(ctx context.Context, req LLMRequest) string {
	text, err := g.Complete(ctx, req)
	if err != nil {
		g.log.Warn("llm call failed, returning empty response",
			zap.String(logger.FieldModel, g.modelFor(req)),
			zap.String("prompt", logger.TruncateForLog(req.Prompt, 80)),
			zap.Error(err),
		)
		return ""
	}
	return text
}

// CachedResponses reports how many completions are memoized.
func (g *LLMGateway) CachedResponses() int {
	return g.cache.Len()
}
