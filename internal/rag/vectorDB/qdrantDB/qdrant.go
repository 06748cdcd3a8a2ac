package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
}

// GetQdrantClient connects once and hands out holders bound to the
// main chunk collection. Returns nil when the store is unreachable so
// the caller can refuse to start.
func GetQdrantClient(ctx context.Context, settings *config.Settings) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx, settings)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:       qdrantInstance,
		collection: settings.CollectionName,
	}
}

func newClient(ctx context.Context, settings *config.Settings) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.QdrantHost,
		Port:     settings.QdrantPort,
		UseTLS:   settings.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if _, err := client.ListCollections(pingCtx); err != nil {
		logger.Error("qdrant is offline", "error", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

// Ping mirrors the health probe of the original service: listing
// collections proves both connectivity and auth.
func (db *ClientHolder) Ping(ctx context.Context) error {
	_, err := db.QObj.ListCollections(ctx)
	return err
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, topK int) ([]docModel.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if topK < 1 {
		topK = 1
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	hits := make([]docModel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, docModel.ScoredChunk{
			Id:    hit.Id.GetUuid(),
			Score: hit.Score,
			Text:  hit.Payload["text"].GetStringValue(),
			Meta:  payloadToMeta(hit.Payload),
		})
	}

	loggr.Debug("Search finished", "hits", len(hits))
	return hits, nil
}

// DocumentChunks reads back every chunk of one document, payload only.
// Used by the chunks-by-heading lookup.
func (db *ClientHolder) DocumentChunks(ctx context.Context, documentName string) ([]docModel.StoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: db.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_name", documentName),
			},
		},
		Limit:       qdrant.PtrOf(uint32(10000)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error scrolling Qdrant", "error", err, "document", documentName)
		return nil, err
	}

	chunks := make([]docModel.StoredChunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, docModel.StoredChunk{
			Id:   point.Id.GetUuid(),
			Text: point.Payload["text"].GetStringValue(),
			Meta: payloadToMeta(point.Payload),
		})
	}
	return chunks, nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string, dim uint64) error {
	return createCollection(ctx, db.QObj, collectionName, dim)
}

// RecreateCollection drops and rebuilds the collection, the way the
// original service reindexes from scratch.
func (db *ClientHolder) RecreateCollection(ctx context.Context, collectionName string, dim uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn("Collection already exists, dropping it", "collection", collectionName)
		if err := db.QObj.DeleteCollection(ctx, collectionName); err != nil {
			return fmt.Errorf("dropping collection %s: %w", collectionName, err)
		}
	}
	return createCollection(ctx, db.QObj, collectionName, dim)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []docModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		headings := make([]any, len(chunk.Headings))
		for j, h := range chunk.Headings {
			headings[j] = h
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":          chunk.Text,
				"document_name": chunk.Doc.Name,
				"source_doc_id": chunk.Doc.Id,
				"chunk_index":   int64(chunk.ChunkIndex),
				"page_num":      int64(chunk.PageNum),
				"headings":      headings,
				"source":        "docling_upload",
				"ingested_at":   chunk.Doc.IngestedAt.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) CountPoints(ctx context.Context, collectionName string) (uint64, error) {
	return db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Exact:          qdrant.PtrOf(true),
	})
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dim uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	if dim == 0 {
		return errors.New("zero embedding dimension")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}

func payloadToMeta(payload map[string]*qdrant.Value) docModel.ChunkMeta {
	meta := docModel.ChunkMeta{
		DocumentName: payload["document_name"].GetStringValue(),
		ChunkIndex:   int(payload["chunk_index"].GetIntegerValue()),
		Source:       payload["source"].GetStringValue(),
	}

	if list := payload["headings"].GetListValue(); list != nil {
		for _, v := range list.GetValues() {
			if h := v.GetStringValue(); h != "" {
				meta.Headings = append(meta.Headings, h)
			}
		}
	}
	return meta
}
