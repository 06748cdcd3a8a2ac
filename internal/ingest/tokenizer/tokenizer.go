// Package tokenizer counts tokens through the provider's tokenize API
// so chunk sizes line up with the model's real tokenization. When the
// endpoint is unreachable or slow, counting falls back to whitespace
// words; chunking degrades gracefully instead of hanging an index job.
package tokenizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/customHttpClient"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

// Counter is what the chunker needs.
type Counter interface {
	CountTokens(ctx context.Context, text string) int
	MaxTokens() int
}

type APITokenizer struct {
	apiURL    string
	modelURI  string
	apiKey    string
	maxTokens int

	client *http.Client
	logger *logger_i.Logger

	mu        sync.Mutex
	reachable *bool // nil until the first probe
}

type tokenizeRequest struct {
	ModelURI string `json:"modelUri"`
	Text     string `json:"text"`
}

type tokenizeResponse struct {
	Tokens []json.RawMessage `json:"tokens"`
}

func New(settings *config.Settings) *APITokenizer {
	return &APITokenizer{
		apiURL:    settings.TokenizeURL,
		modelURI:  settings.LLMModelName,
		apiKey:    settings.LLMAPIKey,
		maxTokens: settings.MaxTokenInput,
		client:    customHttpClient.NewPooledClient(settings.TokenizeConnectTimeout, settings.TokenizeTimeout),
		logger:    logger_i.NewLogger("Tokenizer"),
	}
}

func (t *APITokenizer) MaxTokens() int {
	return t.maxTokens
}

// CountTokens returns the token count for text, via the API when it is
// reachable and a word count otherwise. Never fails: an unusable
// endpoint is disabled for the rest of the run.
func (t *APITokenizer) CountTokens(ctx context.Context, text string) int {
	if t.modelURI == "" {
		return wordCount(text)
	}
	if !t.isAPIReachable(ctx) {
		return wordCount(text)
	}

	count, err := t.tokenizeViaAPI(ctx, text)
	if err != nil {
		t.logger.Warn("Tokenize call failed, disabling token API for this run", "error", err)
		t.disable()
		return wordCount(text)
	}
	if count == 0 {
		return wordCount(text)
	}
	return count
}

// isAPIReachable probes the endpoint once and caches the result. Even a
// 4xx (e.g. 405 Method Not Allowed on GET) proves the host is up.
func (t *APITokenizer) isAPIReachable(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reachable != nil {
		return *t.reachable
	}

	reachable := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.apiURL, nil)
	if err == nil {
		resp, probeErr := t.client.Do(req)
		if probeErr == nil {
			resp.Body.Close()
			reachable = resp.StatusCode < 500
		} else {
			t.logger.Warn("Tokenize endpoint unreachable, using word-based fallback",
				"url", t.apiURL, "error", probeErr)
		}
	}

	t.reachable = &reachable
	return reachable
}

func (t *APITokenizer) disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	off := false
	t.reachable = &off
}

func (t *APITokenizer) tokenizeViaAPI(ctx context.Context, text string) (int, error) {
	body, err := json.Marshal(tokenizeRequest{ModelURI: t.modelURI, Text: text})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("tokenize API returned %d", resp.StatusCode)
	}

	var parsed tokenizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	return len(parsed.Tokens), nil
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
