// Package openaiEmbed talks the OpenAI embeddings protocol. The
// upstream LLM endpoint of this service is OpenAI-compatible, so the
// same client covers both the hosted and self-managed deployments.
package openaiEmbed

import (
	"context"
	"errors"
	"sync"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/customHttpClient"
	"github.com/UWFms/docling-chat-bot/internal/rag/embedding"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model string
}

func GetOpenAIEmbeddingClient(ctx context.Context, settings *config.Settings) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		newEmbedder(ctx, settings)
	})

	// if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{api: embeddingClient.api, model: embeddingClient.model}
}

func newEmbedder(ctx context.Context, settings *config.Settings) {
	if settings.LLMAPIKey == "" {
		logger.Error("LLM_API_KEY is not configured, embedding client disabled")
		return
	}

	api := openai.NewClient(
		option.WithAPIKey(settings.LLMAPIKey),
		option.WithBaseURL(settings.LLMBaseURL),
		option.WithHTTPClient(customHttpClient.NewPooledClient(0, settings.LLMRequestTimeout)),
	)

	embeddingClient = &client{
		api:   api,
		model: settings.EmbeddingModelURI(),
	}
	logger.Info("OpenAI-compatible embedding client created", "model", embeddingClient.model)
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing embedding client")
	embeddingClient = nil
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:          openai.EmbeddingModel(c.model),
		Input:          openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		log.Error("Embedding call failed", "error", err)
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response carried no data")
	}

	return toFloat32(resp.Data[0].Embedding), nil
}

// BatchEmbedding embeds one text per request. The upstream endpoint
// rejects multi-input embedding payloads, matching the original
// service's one-by-one behavior.
func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vector, err := c.GetEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
