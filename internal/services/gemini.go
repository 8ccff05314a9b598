package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"talentalign/jd-matcher/internal/logger"
)

const maxEmbeddingChars = 40000

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// GenerateRequest is one completion request to the provider.
type GenerateRequest struct {
	Prompt      string
	Model       string
	Temperature float32
	Seed        int32
	JSON        bool
}

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateContent(ctx context.Context, req GenerateRequest) (string, error)
	GenerateContentWithRetry(ctx context.Context, req GenerateRequest, maxAttempts int) (string, error)
}

type geminiService struct {
	client     *genai.Client
	embedModel string
	retryDelay time.Duration
	log        *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, embedModel string, retryDelay time.Duration, log *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		embedModel: embedModel,
		retryDelay: retryDelay,
		log:        logger.OrNop(log).With(zap.String(logger.FieldModel, embedModel)),
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateUTF8(text, maxEmbeddingChars)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateContent implements GeminiService.
func (g *geminiService) GenerateContent(ctx context.Context, req GenerateRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		Seed:            genai.Ptr(req.Seed),
		MaxOutputTokens: 4096,
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		reason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("no text content in response (finish reason: %s)", reason)
	}

	g.log.Debug("gemini response received",
		zap.String("model", req.Model),
		zap.Int("chars", len(text)),
		zap.String("preview", logger.TruncateForLog(text, 120)),
	)

	return text, nil
}

// GenerateContentWithRetry implements GeminiService.
func (g *geminiService) GenerateContentWithRetry(ctx context.Context, req GenerateRequest, maxAttempts int) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := g.retryDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := g.GenerateContent(ctx, req)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		g.log.Warn("gemini attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
