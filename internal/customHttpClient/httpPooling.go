package customHttpClient

import (
	"net"
	"net/http"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/config"
)

// NewPooledClient builds an http.Client that reuses connections across
// repeated calls to the same host (tokenize API, OpenAI-compatible
// endpoints). connectTimeout bounds dialing, readTimeout bounds the
// whole round trip.
func NewPooledClient(connectTimeout, readTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   readTimeout,
	}
}
