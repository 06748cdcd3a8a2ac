package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/rag/llm"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, settings *config.Settings) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, settings)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, settings *config.Settings) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: settings.LLMAPIKey})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}

	model := settings.LLMModelName
	if model == "" {
		model = config.GeminiModelName
	}
	geminiClient = &llmClient{client: c, modelName: model}
	logger.Info("Gemini client created", "model", model)
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	geminiClient = nil
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.SystemPrompt},
		},
	}

	userPrompt := llm.BuildUserPrompt(userQuery, matches, messageHistory)

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{SystemInstruction: systemInstruction},
	)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("empty generation result")
	}
	return result.Text(), nil
}
