package tokenizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/config"
)

func newTestSettings(url string) *config.Settings {
	return &config.Settings{
		TokenizeURL:            url,
		LLMModelName:           "gpt://catalog/model/latest",
		LLMAPIKey:              "test-key",
		MaxTokenInput:          32000,
		TokenizeConnectTimeout: 250 * time.Millisecond,
		TokenizeTimeout:        time.Second,
	}
}

func TestCountTokens_ViaAPI(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotAuth = r.Header.Get("Authorization")

		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req["modelUri"] == "" {
			t.Error("modelUri missing from tokenize request")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"tokens": []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}},
		})
	}))
	defer server.Close()

	tok := New(newTestSettings(server.URL))
	count := tok.CountTokens(context.Background(), "one two three four")

	if count != 3 {
		t.Errorf("CountTokens = %d, want 3 (API token count)", count)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
}

func TestCountTokens_FallbackWhenUnreachable(t *testing.T) {
	// A closed server makes the probe fail immediately.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	tok := New(newTestSettings(server.URL))
	count := tok.CountTokens(context.Background(), "alpha beta gamma")

	if count != 3 {
		t.Errorf("fallback CountTokens = %d, want word count 3", count)
	}

	// The probe result must be cached: no further network attempts.
	if tok.reachable == nil || *tok.reachable {
		t.Error("expected endpoint to be marked unreachable")
	}
}

func TestCountTokens_FallbackWithoutModel(t *testing.T) {
	settings := newTestSettings("http://127.0.0.1:0")
	settings.LLMModelName = ""

	tok := New(settings)
	if got := tok.CountTokens(context.Background(), "just four words here"); got != 4 {
		t.Errorf("CountTokens = %d, want 4", got)
	}
}

func TestCountTokens_ServerErrorDisablesAPI(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			calls++
		}
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tok := New(newTestSettings(server.URL))

	if got := tok.CountTokens(context.Background(), "a b"); got != 2 {
		t.Errorf("CountTokens = %d, want fallback 2", got)
	}
	// Second call must not hit the API again.
	tok.CountTokens(context.Background(), "c d e")
	if calls != 1 {
		t.Errorf("POST calls = %d, want 1 (API disabled after failure)", calls)
	}
}

func TestMaxTokens(t *testing.T) {
	tok := New(newTestSettings("http://localhost"))
	if tok.MaxTokens() != 32000 {
		t.Errorf("MaxTokens = %d, want 32000", tok.MaxTokens())
	}
}
