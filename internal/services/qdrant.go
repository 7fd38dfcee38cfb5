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

// VectorStore holds embedded resume passages, one set per profile.
type VectorStore interface {
	InitCollection(ctx context.Context) error
	ReplaceProfile(ctx context.Context, profileID string, passages []Passage) error
	SearchProfile(ctx context.Context, profileID string, queryEmbedding []float32, limit int) ([]SearchResult, error)
	DeleteProfile(ctx context.Context, profileID string) error
}

type Passage struct {
	Text      string
	Embedding []float32
}

type SearchResult struct {
	ProfileID string
	Score     float32
	Text      string
	Chunk     int
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

	// gRPC port unless the URL names one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
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
		log.Println("✅ Collection already exists")
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

// ReplaceProfile drops the profile's old passages and writes the new ones.
func (q *qdrantService) ReplaceProfile(ctx context.Context, profileID string, passages []Passage) error {
	if err := q.DeleteProfile(ctx, profileID); err != nil {
		return err
	}
	if len(passages) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(passages))
	for i, p := range passages {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(passagePointID(profileID, i)),
			Vectors: qdrant.NewVectors(p.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"profile_id": profileID,
				"chunk":      i,
				"text":       p.Text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert passages: %w", err)
	}

	return nil
}

// SearchProfile implements VectorStore.
func (q *qdrantService) SearchProfile(ctx context.Context, profileID string, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         profileFilter(profileID),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		payload := point.GetPayload()
		results = append(results, SearchResult{
			ProfileID: payload["profile_id"].GetStringValue(),
			Score:     point.GetScore(),
			Text:      payload["text"].GetStringValue(),
			Chunk:     int(payload["chunk"].GetIntegerValue()),
		})
	}

	return results, nil
}

// DeleteProfile implements VectorStore.
func (q *qdrantService) DeleteProfile(ctx context.Context, profileID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: profileFilter(profileID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete profile passages: %w", err)
	}

	return nil
}

func profileFilter(profileID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("profile_id", profileID),
		},
	}
}

// passagePointID is stable per (profile, chunk) so re-indexing overwrites.
func passagePointID(profileID string, chunk int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(profileID+"#"+strconv.Itoa(chunk))).String()
}
