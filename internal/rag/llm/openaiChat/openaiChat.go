// Package openaiChat generates answers through an OpenAI-compatible
// chat-completions endpoint.
package openaiChat

import (
	"context"
	"errors"
	"sync"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/customHttpClient"
	"github.com/UWFms/docling-chat-bot/internal/rag/llm"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var chatClient *llmClient
var once sync.Once

type llmClient struct {
	api       openai.Client
	modelName string
	maxTokens int
}

func GetOpenAIChatClient(ctx context.Context, settings *config.Settings) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		newChatClient(ctx, settings)
	})

	if chatClient == nil {
		return nil
	}
	return &llmClient{api: chatClient.api, modelName: chatClient.modelName, maxTokens: chatClient.maxTokens}
}

func newChatClient(ctx context.Context, settings *config.Settings) {
	if settings.LLMAPIKey == "" || settings.LLMModelName == "" {
		logger.Error("LLM_API_KEY or LLM_MODEL_NAME missing, chat client disabled")
		return
	}

	api := openai.NewClient(
		option.WithAPIKey(settings.LLMAPIKey),
		option.WithBaseURL(settings.LLMBaseURL),
		option.WithHTTPClient(customHttpClient.NewPooledClient(0, settings.LLMRequestTimeout)),
	)

	chatClient = &llmClient{
		api:       api,
		modelName: settings.LLMModelName,
		maxTokens: settings.MaxTokenOutput,
	}
	logger.Info("OpenAI-compatible chat client created", "model", settings.LLMModelName)
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing chat client")
	chatClient = nil
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.SystemPrompt),
			openai.UserMessage(llm.BuildUserPrompt(userQuery, matches, messageHistory)),
		},
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(config.ModelTemperature),
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("Chat completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
