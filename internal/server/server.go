package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/UWFms/docling-chat-bot/internal/adapter/utils"
	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/middleware"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// CreateServer wires the routes and blocks serving. mcpHandler is
// mounted at /mcp when non-nil.
func CreateServer(listenAddr string, mcpHandler http.Handler) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/health", middleware.HealthHandler)

	r.Router.Route("/api/v1", func(api chi.Router) {
		api.Post("/chat", middleware.ChatHandler)
		api.Get("/status/{id}", middleware.GetStatusHandler)
		api.Post("/doc/index", middleware.IndexHandler)
		api.Post("/doc/upload", middleware.UploadHandler)
		api.Post("/doc/similar", middleware.SimilarHandler)
		api.Post("/doc/chunks-by-heading", middleware.ChunksByHeadingHandler)
	})

	if mcpHandler != nil {
		r.Router.Mount("/mcp", mcpHandler)
	}

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		_logger.Info("Forced shutdown")
		os.Exit(1)
	}
}
