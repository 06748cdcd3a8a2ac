package vectorDB

import (
	"context"

	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
)

// DataProcessor is everything the RAG pipeline needs from a vector
// store. The worker and service layers only see this contract.
type DataProcessor interface {
	Search(ctx context.Context, vector []float32, topK int) ([]docModel.ScoredChunk, error)
	DocumentChunks(ctx context.Context, documentName string) ([]docModel.StoredChunk, error)

	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
	InitCacheCollection(ctx context.Context, dim uint64) error

	EnsureCollection(ctx context.Context, collectionName string, dim uint64) error
	RecreateCollection(ctx context.Context, collectionName string, dim uint64) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []docModel.Chunk, vectors [][]float32) error

	CountPoints(ctx context.Context, collectionName string) (uint64, error)
	Ping(ctx context.Context) error
}
