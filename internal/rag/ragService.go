package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/adapter/utils"
	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/internal/ingest"
	"github.com/UWFms/docling-chat-bot/internal/metrics"
	"github.com/UWFms/docling-chat-bot/internal/rag/embedding"
	"github.com/UWFms/docling-chat-bot/internal/rag/llm"
	"github.com/UWFms/docling-chat-bot/internal/rag/vectorDB"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

// Service is the single surface the worker and the sync handlers talk
// to. They never see the vector store, the embedder or the LLM client
// directly.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IndexDocuments(ctx context.Context, job jobModel.Job) jobModel.Job

	SearchSimilar(ctx context.Context, query string, topK int) ([]docModel.ScoredChunk, error)
	SectionChunks(ctx context.Context, documentName string, chunkIndex int, depth int) (SectionResult, error)
	Healthy(ctx context.Context) (vectorOK bool, docLoaded bool)
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	processor   *ingest.Processor
	settings    *config.Settings
	logger      *logger_i.Logger
}

func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder, proc *ingest.Processor, settings *config.Settings) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		processor:   proc,
		settings:    settings,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	embeddingStep, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, embeddingStep)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, embeddingStep)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, matches, messageHistory)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	// The save must outlive the job context, which the worker cancels
	// as soon as this returns. WithoutCancel keeps the trace id.
	go func() {
		saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), config.CacheSaveTimeout)
		defer cancelSave()
		if err := s.vectorDB.SaveToCache(saveCtx, utils.GetNewUUID(), embeddingStep, answer); err != nil {
			s.logger.Error("Failed to save to cache", "error", err)
		}
	}()

	return returnOutput(jobt, answer)
}

// IndexDocuments rebuilds or extends the chunk collection from the path
// in the job payload. The path may be a single uploaded file or a
// directory to walk.
func (s *service) IndexDocuments(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_indexing", time.Since(start)) }()

	jobt.CurrentStep = jobModel.IndexInit

	files, err := s.collectIndexTargets(jobt.JobPayload.DocumentPath)
	if err != nil {
		return s.jobError(jobt, err, "INDEX_SCAN_FAILURE", false)
	}
	if len(files) == 0 {
		return s.jobError(jobt, fmt.Errorf("no indexable documents at %s", jobt.JobPayload.DocumentPath), "INDEX_EMPTY", false)
	}

	// The collection dimension is whatever the embedding backend
	// produces, probed once per run.
	probe, err := s.embedder.GetEmbedding(ctx, "dimension probe")
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}
	dim := uint64(len(probe))

	if jobt.JobPayload.RebuildCollection {
		err = s.vectorDB.RecreateCollection(ctx, s.settings.CollectionName, dim)
	} else {
		err = s.vectorDB.EnsureCollection(ctx, s.settings.CollectionName, dim)
	}
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	// The answer cache shares the embedding dimension, so this is the
	// first point where it can be created. Failure is tolerable, chat
	// just runs uncached.
	if err := s.vectorDB.InitCacheCollection(ctx, dim); err != nil {
		inMethodLogger.Warn("Cache collection init failed", "error", err)
	}

	jobt.CurrentStep = jobModel.IndexProcessing
	totalInserted := 0
	for _, file := range files {
		chunks, err := s.processor.ProcessDocument(ctx, file, filepath.Base(file))
		if err != nil {
			inMethodLogger.Error("Skipping document", "file", file, "error", err)
			continue
		}

		inserted, err := ingest.BatchIngest(ctx, s.settings.CollectionName, chunks, s.vectorDB, s.embedder)
		totalInserted += inserted
		if err != nil {
			jobt.JobPayload.InsertedChunks = totalInserted
			return s.jobError(jobt, err, "INGESTION_FAILURE", true)
		}
	}

	if totalInserted == 0 {
		return s.jobError(jobt, fmt.Errorf("no chunks produced from %d documents", len(files)), "INDEX_EMPTY", false)
	}

	metrics.AddIndexedChunks(totalInserted)
	s.cleanupUpload(jobt.JobPayload.DocumentPath)

	inMethodLogger.Info("Indexing complete", "documents", len(files), "chunks", totalInserted)
	jobt.JobPayload.InsertedChunks = totalInserted
	jobt.CurrentStep = jobModel.Complete
	return jobt
}

// SearchSimilar is the synchronous retrieval endpoint. Hits below the
// configured score threshold are dropped, same as the chat pipeline.
func (s *service) SearchSimilar(ctx context.Context, query string, topK int) ([]docModel.ScoredChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("similarity_search", time.Since(start)) }()

	if topK < 1 {
		topK = s.settings.RetrieveLimit
	}

	vector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	hits, err := s.vectorDB.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	filtered := hits[:0]
	for _, hit := range hits {
		if hit.Score >= s.settings.ScoreThreshold {
			filtered = append(filtered, hit)
		}
	}
	return filtered, nil
}

func (s *service) Healthy(ctx context.Context) (bool, bool) {
	if err := s.vectorDB.Ping(ctx); err != nil {
		return false, false
	}

	count, err := s.vectorDB.CountPoints(ctx, s.settings.CollectionName)
	if err != nil {
		return true, false
	}
	return true, count > 0
}

// collectIndexTargets expands a path into the sorted list of files to
// index. Directories are walked one level deep, hidden files skipped.
func (s *service) collectIndexTargets(path string) ([]string, error) {
	if path == "" {
		path = s.settings.UploadDir
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// cleanupUpload removes a temp file created by the upload endpoint.
// Files outside the upload dir are left alone.
func (s *service) cleanupUpload(path string) {
	if path == "" || s.settings.UploadDir == "" {
		return
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	absDir, err := filepath.Abs(s.settings.UploadDir)
	if err != nil {
		return
	}
	if filepath.Dir(absPath) != absDir {
		return
	}

	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Could not remove uploaded file", "path", absPath, "error", err)
	}
}
