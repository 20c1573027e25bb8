package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const (
	payloadCandidateID = "candidate_id"
	payloadChunk       = "chunk"
	payloadText        = "text"

	embeddingSize = 768
)

// ChunkVector is one embedded piece of a resume.
type ChunkVector struct {
	Index  int
	Text   string
	Vector []float32
}

// ChunkHit is a search result for one resume chunk.
type ChunkHit struct {
	CandidateID uuid.UUID
	Chunk       int
	Text        string
	Score       float32
}

// VectorStore keeps resume chunk embeddings.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, candidateID uuid.UUID, chunks []ChunkVector) error
	DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error
	Search(ctx context.Context, vector []float32, limit int) ([]ChunkHit, error)
}

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

// NewQdrantStore connects to Qdrant over gRPC. The port in urlStr is used as
// is; without one the gRPC default 6334 applies.
func NewQdrantStore(urlStr, apiKey, collectionName string, log *zap.Logger) (VectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

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

	if log == nil {
		log = zap.NewNop()
	}

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     embeddingSize,
		logger:         log,
	}, nil
}

func (q *qdrantStore) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		q.logger.Info("qdrant collection ready", zap.String("collection", q.collectionName))
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

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

func (q *qdrantStore) UpsertChunks(ctx context.Context, candidateID uuid.UUID, chunks []ChunkVector) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(chunkPointID(candidateID, c.Index)),
			Vectors: qdrant.NewVectors(c.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadCandidateID: candidateID.String(),
				payloadChunk:       int64(c.Index),
				payloadText:        c.Text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert candidate %s: %w", candidateID, err)
	}
	return nil
}

func (q *qdrantStore) DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch(payloadCandidateID, candidateID.String()),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete candidate %s: %w", candidateID, err)
	}
	return nil
}

func (q *qdrantStore) Search(ctx context.Context, vector []float32, limit int) ([]ChunkHit, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]ChunkHit, 0, len(points))
	for _, point := range points {
		payload := point.Payload

		var hit ChunkHit
		hit.Score = point.Score

		if v, ok := payload[payloadCandidateID]; ok {
			if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				id, err := uuid.Parse(s.StringValue)
				if err != nil {
					q.logger.Warn("skipping point with bad candidate id", zap.String("value", s.StringValue))
					continue
				}
				hit.CandidateID = id
			}
		}
		if hit.CandidateID == uuid.Nil {
			continue
		}
		if v, ok := payload[payloadChunk]; ok {
			if n, ok := v.GetKind().(*qdrant.Value_IntegerValue); ok {
				hit.Chunk = int(n.IntegerValue)
			}
		}
		if v, ok := payload[payloadText]; ok {
			if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Text = s.StringValue
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// chunkPointID derives a stable point id so re-indexing a candidate overwrites
// its previous points.
func chunkPointID(candidateID uuid.UUID, index int) uint64 {
	id := uuid.NewSHA1(candidateID, []byte(strconv.Itoa(index)))
	return binary.BigEndian.Uint64(id[:8])
}
