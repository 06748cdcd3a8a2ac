// Package middleware wraps the HTTP handlers with tracing, CORS, auth,
// per-IP rate limiting and request metrics.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/handlers"
	"github.com/UWFms/docling-chat-bot/internal/metrics"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var settings *config.Settings

func Init(cfg *config.Settings) {
	settings = cfg
}

var (
	ChatHandler            = Wrap(handlers.ChatHandler)
	GetStatusHandler       = Wrap(handlers.GetStatusHandler)
	UploadHandler          = Wrap(handlers.UploadHandler)
	IndexHandler           = Wrap(handlers.IndexHandler)
	SimilarHandler         = Wrap(handlers.SimilarHandler)
	ChunksByHeadingHandler = Wrap(handlers.ChunksByHeadingHandler)

	// health stays reachable without a token so probes keep working
	HealthHandler = WrapPublic(handlers.HealthHandler)
)

// Wrap applies the full chain: metrics, CORS, trace, rate limit, auth.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return chain(next, true)
}

// WrapPublic is Wrap without the bearer-token check.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return chain(next, false)
}

func chain(next http.HandlerFunc, withAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}

		if handleCORS(rec, r) {
			return
		}

		re := processRequest(requestResponseStruct{req: r, writer: rec}, withAuth)
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct, withAuth bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received")

	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}

	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		return re
	}

	if withAuth {
		re = authenticate(re)
	}
	return re
}
