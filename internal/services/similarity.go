package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
)

var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SimilarityService embeds normalized text and compares it by cosine similarity.
type SimilarityService struct {
	embedder Embedder
	model    string
	timeout  time.Duration
	cache    *Memo[embeddingKey, []float32]
	log      *zap.Logger
}

func NewSimilarityService(embedder Embedder, model string, timeout time.Duration, log *zap.Logger) *SimilarityService {
	return &SimilarityService{
		embedder: embedder,
		model:    model,
		timeout:  timeout,
		cache:    NewMemo[embeddingKey, []float32](),
		log:      logger.OrNop(log),
	}
}

// Embed returns the vector of the normalized text.
func (s *SimilarityService) Embed(ctx context.Context, text string) ([]float32, error) {
	norm := NormalizeForEmbedding(text)
	if norm == "" {
		return nil, fmt.Errorf("%w: blank text", ErrEmbeddingUnavailable)
	}

	vec, err := s.cache.Get(embeddingKey{Model: s.model, Text: norm}, func() ([]float32, error) {
		callCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, s.timeout)
			defer cancel()
		}
		return s.embedder.GenerateEmbedding(callCtx, norm)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	return vec, nil
}

// Similarity is the cosine similarity of a and b clamped to [0,1].
// Blank input or an embedding failure yields 0.
func (s *SimilarityService) Similarity(ctx context.Context, a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}

	va, err := s.Embed(ctx, a)
	if err != nil {
		s.log.Warn("embedding failed, similarity defaults to 0", zap.Error(err))
		return 0
	}
	vb, err := s.Embed(ctx, b)
	if err != nil {
		s.log.Warn("embedding failed, similarity defaults to 0", zap.Error(err))
		return 0
	}

	return clamp01(CosineSimilarity(va, vb))
}

// CosineSimilarity returns 0 for mismatched or zero-length vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
