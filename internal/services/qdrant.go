package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// VectorStore holds embedded resume chunks, one point per chunk.
type VectorStore interface {
	InitCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, applicationID, jobID uuid.UUID, chunks []string, embeddings [][]float32) error
	SearchJob(ctx context.Context, jobID uuid.UUID, queryEmbedding []float32, limit int) ([]SearchResult, error)
	DeleteApplication(ctx context.Context, applicationID uuid.UUID) error
	DeleteJob(ctx context.Context, jobID uuid.UUID) error
}

type SearchResult struct {
	ApplicationID uuid.UUID
	Score         float32
	Text          string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (VectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
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
		vectorSize:     768, // text-embedding-004
	}, nil
}

// InitCollection implements VectorStore.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
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

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunks implements VectorStore. Point ids derive from the application
// id and chunk index, so re-indexing overwrites instead of duplicating.
func (q *qdrantService) UpsertChunks(ctx context.Context, applicationID, jobID uuid.UUID, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d != %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, text := range chunks {
		pointID := uuid.NewSHA1(applicationID, []byte(strconv.Itoa(i)))
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID.String()),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"application_id": applicationID.String(),
				"job_id":         jobID.String(),
				"chunk":          i,
				"text":           text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// SearchJob implements VectorStore.
func (q *qdrantService) SearchJob(ctx context.Context, jobID uuid.UUID, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("job_id", jobID.String()),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{Score: point.Score}

		if v, ok := point.Payload["application_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				id, err := uuid.Parse(val.StringValue)
				if err != nil {
					continue
				}
				result.ApplicationID = id
			}
		}
		if v, ok := point.Payload["text"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				result.Text = val.StringValue
			}
		}

		if result.ApplicationID != uuid.Nil {
			results = append(results, result)
		}
	}

	return results, nil
}

// DeleteApplication implements VectorStore.
func (q *qdrantService) DeleteApplication(ctx context.Context, applicationID uuid.UUID) error {
	if err := q.deleteMatching(ctx, "application_id", applicationID.String()); err != nil {
		return fmt.Errorf("failed to delete application points: %w", err)
	}
	return nil
}

// DeleteJob implements VectorStore.
func (q *qdrantService) DeleteJob(ctx context.Context, jobID uuid.UUID) error {
	if err := q.deleteMatching(ctx, "job_id", jobID.String()); err != nil {
		return fmt.Errorf("failed to delete job points: %w", err)
	}
	return nil
}

func (q *qdrantService) deleteMatching(ctx context.Context, field, value string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch(field, value),
					},
				},
			},
		},
	})
	return err
}
