package rag_test

import (
	"context"

	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	OnSearch             func(ctx context.Context, vector []float32, topK int) ([]docModel.ScoredChunk, error)
	OnDocumentChunks     func(ctx context.Context, documentName string) ([]docModel.StoredChunk, error)
	OnGetCachedAnswer    func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache        func(ctx context.Context, id string, vector []float32, answer string) error
	OnEnsureCollection   func(ctx context.Context, name string, dim uint64) error
	OnRecreateCollection func(ctx context.Context, name string, dim uint64) error
	OnUpsertBatch        func(ctx context.Context, name string, chunks []docModel.Chunk, vectors [][]float32) error
	OnCountPoints        func(ctx context.Context, name string) (uint64, error)
	OnPing               func(ctx context.Context) error
}

func (m *MockVectorDB) Search(ctx context.Context, v []float32, topK int) ([]docModel.ScoredChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v, topK)
	}
	return []docModel.ScoredChunk{
		{Id: "hit-1", Score: 0.9, Text: "default context", Meta: docModel.ChunkMeta{DocumentName: "doc.pdf"}},
	}, nil
}

func (m *MockVectorDB) DocumentChunks(ctx context.Context, documentName string) ([]docModel.StoredChunk, error) {
	if m.OnDocumentChunks != nil {
		return m.OnDocumentChunks(ctx, documentName)
	}
	return nil, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) InitCacheCollection(ctx context.Context, dim uint64) error {
	return nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, name string, dim uint64) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name, dim)
	}
	return nil
}

func (m *MockVectorDB) RecreateCollection(ctx context.Context, name string, dim uint64) error {
	if m.OnRecreateCollection != nil {
		return m.OnRecreateCollection(ctx, name, dim)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []docModel.Chunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) CountPoints(ctx context.Context, name string) (uint64, error) {
	if m.OnCountPoints != nil {
		return m.OnCountPoints(ctx, name)
	}
	return 1, nil
}

func (m *MockVectorDB) Ping(ctx context.Context) error {
	if m.OnPing != nil {
		return m.OnPing(ctx)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, matches []string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, mth []string, hist []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, mth, hist)
	}
	return "mocked llm response", nil
}
