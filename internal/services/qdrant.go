package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
)

const (
	PayloadFileName       = "file_name"
	PayloadFullText       = "full_text"
	PayloadContentSnippet = "content_snippet"
)

// VectorStore holds job postings as embeddings with a string payload.
type VectorStore interface {
	InitCollection(ctx context.Context) error
	Search(ctx context.Context, vector []float32, limit int) ([]ScoredPoint, error)
	Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error
	Scroll(ctx context.Context, limit int) ([]StoredPoint, error)
	Delete(ctx context.Context, ids []string) error
}

type StoredPoint struct {
	ID      string
	Payload map[string]string
}

type ScoredPoint struct {
	StoredPoint
	Score float32
}

// JobText returns the posting text, preferring the full text over the snippet.
func (p StoredPoint) JobText() string {
	if t := p.Payload[PayloadFullText]; t != "" {
		return t
	}
	return p.Payload[PayloadContentSnippet]
}

func (p StoredPoint) FileName() string {
	return p.Payload[PayloadFileName]
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64, log *zap.Logger) (VectorStore, error) {
	host, port, useTLS, err := parseQdrantURL(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		log:            logger.OrNop(log).With(zap.String("collection", collectionName)),
	}, nil
}

// parseQdrantURL defaults to the gRPC port 6334 when none is given.
func parseQdrantURL(urlStr string) (string, int, bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	if parsed.Hostname() == "" {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: missing host in %q", urlStr)
	}

	port := 6334
	if p := parsed.Port(); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
		port = v
	}

	return parsed.Hostname(), port, parsed.Scheme == "https", nil
}

// InitCollection implements VectorStore.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Info("qdrant collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("qdrant collection created", zap.Uint64("vector_size", q.vectorSize))
	return nil
}

// Upsert implements VectorStore.
func (q *qdrantService) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	values := make(map[string]any, len(payload))
	for k, v := range payload {
		values[k] = v
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      uuidPointID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(values),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Search implements VectorStore.
func (q *qdrantService) Search(ctx context.Context, vector []float32, limit int) ([]ScoredPoint, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]ScoredPoint, 0, len(points))
	for _, p := range points {
		results = append(results, ScoredPoint{
			StoredPoint: StoredPoint{ID: pointIDString(p.GetId()), Payload: payloadStrings(p.GetPayload())},
			Score:       p.GetScore(),
		})
	}
	return results, nil
}

// Scroll implements VectorStore.
func (q *qdrantService) Scroll(ctx context.Context, limit int) ([]StoredPoint, error) {
	points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.collectionName,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll: %w", err)
	}

	results := make([]StoredPoint, 0, len(points))
	for _, p := range points {
		results = append(results, StoredPoint{ID: pointIDString(p.GetId()), Payload: payloadStrings(p.GetPayload())})
	}
	return results, nil
}

// Delete implements VectorStore.
func (q *qdrantService) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, parsePointID(id))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: pointIDs},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}

	return nil
}

func uuidPointID(id string) *qdrant.PointId {
	return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}
}

// parsePointID accepts numeric ids as well as UUIDs.
func parsePointID(id string) *qdrant.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return uuidPointID(id)
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func payloadStrings(payload map[string]*qdrant.Value) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			out[k] = s.StringValue
		}
	}
	return out
}
