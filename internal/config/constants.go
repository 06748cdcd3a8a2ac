package config

import "time"

const (
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// semantic answer cache
	CacheSimilarityCutoff = 0.97
	CacheCollectionName   = "semantic-cache"
	CacheSaveTimeout      = 10 * time.Second

	// chunking
	ChunkTokenLimit   = 512
	ChunkTokenOverlap = 64
	EmbedBatchSize    = 100

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	// indexing a large document dominates this budget
	JobExecutionTimeout = 5 * time.Minute

	// server timeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	// job requests buffer limit
	BufferLimit = 100

	// vector store
	QdrantConnectionTimeout = 30 * time.Second
	QdrantPoolSize          = 1

	// gemini provider defaults
	GeminiModelName                     = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel                = "gemini-embedding-001"
	EmbeddingOutputDimensionality int32 = 1536

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	// redis has 16 DBs we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour

	ModelTemperature float64 = 0.7

	SystemPrompt = "You are a document assistant. Answer using only the supplied document " +
		"context and keep the tone professional. If the context does not contain the " +
		"answer, say you don't know."
)
