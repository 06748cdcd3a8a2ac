package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

func TestIsValidBearerToken(t *testing.T) {
	log := logger_i.NewLogger("test")

	t.Run("bypass when no token configured", func(t *testing.T) {
		settings = &config.Settings{}
		if !IsValidBearerToken("", log) {
			t.Error("empty configured token must bypass auth")
		}
	})

	settings = &config.Settings{AuthToken: "secret-token"}
	defer func() { settings = nil }()

	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid token", "Bearer secret-token", true},
		{"wrong token", "Bearer wrong", false},
		{"missing prefix", "secret-token", false},
		{"empty header", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsValidBearerToken(c.header, log); got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestHandleCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)

	if !handleCORS(rec, req) {
		t.Fatal("preflight must be fully handled")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("got status %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header")
	}
}

func TestHandleCORSPassesNormalRequests(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	if handleCORS(rec, req) {
		t.Fatal("GET must pass through")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS headers must be set on normal requests too")
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)

	ip := "10.0.0.1"
	if !limiter.GetLimiter(ip).Allow() || !limiter.GetLimiter(ip).Allow() {
		t.Fatal("burst of 2 should be allowed")
	}
	if limiter.GetLimiter(ip).Allow() {
		t.Error("third immediate request should be limited")
	}

	if !limiter.GetLimiter("10.0.0.2").Allow() {
		t.Error("limits are per IP")
	}
}
