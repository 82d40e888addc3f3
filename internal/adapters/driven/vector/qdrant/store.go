// Package qdrant provides a vector store backed by a Qdrant server via
// its official gRPC client. Indexing and similarity search are
// delegated to the server (HNSW); this adapter only maps the store
// contract onto insert/search/delete primitives.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/lekesiz/netz-rag/internal/core/domain"
	"github.com/lekesiz/netz-rag/internal/core/ports/driven"
	"github.com/lekesiz/netz-rag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 6334
	DefaultCollection = "netz_knowledge"

	// Conservative upsert rate for bulk ingestion, well below what a
	// local Qdrant sustains.
	DefaultUpsertsPerSecond = 10.0
	DefaultUpsertBurst      = 20
)

// Config holds connection settings for the Qdrant store.
type Config struct {
	Host       string
	Port       int
	Collection string
	Dimensions int

	// UpsertsPerSecond rate-limits Add calls on the bulk-ingestion
	// path. Zero selects the default.
	UpsertsPerSecond float64
	UpsertBurst      int
}

// Store delegates vector storage and search to Qdrant.
type Store struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
	dimensions int
	limiter    *rate.Limiter
}

// NewStore connects to Qdrant and ensures the collection exists with
// cosine distance and the configured dimensionality.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.EmbeddingDimensions
	}
	if cfg.UpsertsPerSecond <= 0 {
		cfg.UpsertsPerSecond = DefaultUpsertsPerSecond
	}
	if cfg.UpsertBurst <= 0 {
		cfg.UpsertBurst = DefaultUpsertBurst
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	s := &Store{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		limiter:    rate.NewLimiter(rate.Limit(cfg.UpsertsPerSecond), cfg.UpsertBurst),
	}

	if err := s.ensureCollection(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (s *Store) ensureCollection(ctx context.Context, conn *grpc.ClientConn) error {
	collections := pb.NewCollectionsClient(conn)

	resp, err := collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("%w: listing collections: %v", domain.ErrStorageUnavailable, err)
	}
	for _, c := range resp.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	logger.Info("qdrant: creating collection %s (%d dims)", s.collection, s.dimensions)
	_, err = collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(s.dimensions),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Add upserts documents. Point IDs are deterministic UUIDs derived from
// the content fingerprint, so re-adding identical content overwrites
// the prior point instead of duplicating it.
func (s *Store) Add(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	points := make([]*pb.PointStruct, len(docs))
	for i, d := range docs {
		metadataJSON, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", d.ID, err)
		}

		points[i] = &pb.PointStruct{
			Id:      pointID(d.ID),
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: d.Embedding}}},
			Payload: map[string]*pb.Value{
				"id":         {Kind: &pb.Value_StringValue{StringValue: d.ID}},
				"content":    {Kind: &pb.Value_StringValue{StringValue: d.Content}},
				"metadata":   {Kind: &pb.Value_StringValue{StringValue: string(metadataJSON)}},
				"created_at": {Kind: &pb.Value_StringValue{StringValue: d.CreatedAt.UTC().Format(time.RFC3339)}},
			},
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upserting points: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Search finds the k nearest points and reconstructs documents from
// their payloads.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: searching points: %v", domain.ErrStorageUnavailable, err)
	}

	results := make([]domain.SearchResult, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		doc := documentFromPayload(pt.GetPayload())
		results = append(results, domain.SearchResult{
			Document: doc,
			Score:    float64(pt.GetScore()),
		})
	}
	return results, nil
}

// Delete removes points by document ID. Unknown IDs are a no-op on the
// server side.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: pointIDs},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: deleting points: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Count returns the exact number of stored points.
func (s *Store) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting points: %v", domain.ErrStorageUnavailable, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Name identifies the backend.
func (s *Store) Name() string {
	return "qdrant"
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// pointID maps a content fingerprint to a stable Qdrant point UUID.
// Qdrant point IDs must be UUIDs or integers; the real document ID
// travels in the payload.
func pointID(docID string) *pb.PointId {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID))
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: u.String()}}
}

// documentFromPayload rebuilds a domain.Document from point payload.
func documentFromPayload(payload map[string]*pb.Value) domain.Document {
	var doc domain.Document
	if v, ok := payload["id"]; ok {
		doc.ID = v.GetStringValue()
	}
	if v, ok := payload["content"]; ok {
		doc.Content = v.GetStringValue()
	}
	if v, ok := payload["metadata"]; ok && v.GetStringValue() != "" {
		if err := json.Unmarshal([]byte(v.GetStringValue()), &doc.Metadata); err != nil {
			logger.Warn("qdrant: undecodable metadata payload for %s", doc.ID)
		}
	}
	if v, ok := payload["created_at"]; ok {
		if ts, err := time.Parse(time.RFC3339, v.GetStringValue()); err == nil {
			doc.CreatedAt = ts
		}
	}
	return doc
}
