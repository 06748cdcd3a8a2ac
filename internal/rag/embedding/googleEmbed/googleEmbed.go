// Package googleEmbed is the Gemini-backed embedder, selectable with
// LLM_PROVIDER=gemini.
package googleEmbed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/rag/embedding"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func GetGoogleEmbeddingClient(ctx context.Context, settings *config.Settings) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, settings)
	})

	// if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func newGoogleEmbedder(ctx context.Context, settings *config.Settings) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: settings.LLMAPIKey})
	if err != nil {
		logger.Error("Error creating Google embedding client", "error", err)
		return
	}

	model := settings.LLMEmbeddingModel
	if model == "" {
		model = config.GoogleEmbeddingModel
	}
	embeddingClient = &client{genAi: c, model: model}
	logger.Info("Google embedding client created", "model", model)
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Google embedding client")
	embeddingClient = nil
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, genai.Text(text))
	if err != nil {
		log.Error("Error getting embedding from Google", "error", err)
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, getContent(texts))
	if err != nil && isRateLimited(err) {
		log.Warn("Rate limit hit, retrying in 5 seconds", "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
		result, err = c.doCall(ctx, getContent(texts))
	}
	if err != nil {
		log.Error("Error getting batch embeddings from Google", "error", err)
		return nil, err
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, r := range result.Embeddings {
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return contents
}

func isRateLimited(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
