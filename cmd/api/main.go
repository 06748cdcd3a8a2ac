// @title           Docling Chat Bot API
// @version         1.0
// @description     Document indexing and retrieval-augmented chat over docling-style chunked documents.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/v1
// @schemes   http https
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/data/store"
	jobmodel "github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/internal/handlers"
	"github.com/UWFms/docling-chat-bot/internal/ingest"
	"github.com/UWFms/docling-chat-bot/internal/ingest/tokenizer"
	"github.com/UWFms/docling-chat-bot/internal/job"
	"github.com/UWFms/docling-chat-bot/internal/mcpserver"
	"github.com/UWFms/docling-chat-bot/internal/middleware"
	"github.com/UWFms/docling-chat-bot/internal/rag"
	"github.com/UWFms/docling-chat-bot/internal/rag/embedding"
	"github.com/UWFms/docling-chat-bot/internal/rag/embedding/googleEmbed"
	"github.com/UWFms/docling-chat-bot/internal/rag/embedding/openaiEmbed"
	"github.com/UWFms/docling-chat-bot/internal/rag/llm"
	"github.com/UWFms/docling-chat-bot/internal/rag/llm/gemini"
	"github.com/UWFms/docling-chat-bot/internal/rag/llm/openaiChat"
	"github.com/UWFms/docling-chat-bot/internal/rag/vectorDB/qdrantDB"
	"github.com/UWFms/docling-chat-bot/internal/server"
	"github.com/UWFms/docling-chat-bot/internal/worker"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

var (
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	logger_i.Init()
	logger := logger_i.NewLogger("main")

	settings, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	jobStore := store.GetRedisJobStore(serviceContext, settings)
	messageStore := store.GetRedisMessageStore(serviceContext, settings)
	if jobStore == nil || messageStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	service := job.InitJobService(serviceConfig)

	vectorDB := qdrantDB.GetQdrantClient(serviceContext, settings)
	embeddingService, llmProvider := buildProviders(serviceContext, settings)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	tokenCounter := tokenizer.New(settings)
	processor := ingest.NewProcessor(tokenCounter)
	ragService := rag.NewService(vectorDB, llmProvider, embeddingService, processor, settings)

	middleware.Init(settings)
	handlers.InitJobHandler(service, settings)
	handlers.InitDocHandler(ragService)

	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.ListenAddr(), mcpserver.NewHandler(ragService))

	<-stopExecution
	logger.Info("Server stopped")
}

// buildProviders picks the embedding and chat backends. The default is
// the OpenAI-compatible protocol; gemini talks to Google directly.
func buildProviders(ctx context.Context, settings *config.Settings) (embedding.Embedder, llm.Provider) {
	if settings.LLMProvider == "gemini" {
		return googleEmbed.GetGoogleEmbeddingClient(ctx, settings), gemini.GetGeminiClient(ctx, settings)
	}
	return openaiEmbed.GetOpenAIEmbeddingClient(ctx, settings), openaiChat.GetOpenAIChatClient(ctx, settings)
}
