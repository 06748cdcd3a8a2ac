package logger_i

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is a thin wrapper over slog that tags every record with the
// component that emitted it.
type Logger struct {
	inner *slog.Logger
}

var initOnce sync.Once

// Init installs the process-wide handler. LOG_FORMAT=json switches to
// JSON output for container deployments, LOG_LEVEL picks the floor.
func Init() {
	initOnce.Do(func() {
		options := &slog.HandlerOptions{
			Level: parseLevel(os.Getenv("LOG_LEVEL")),
		}

		var handler slog.Handler
		if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
			handler = slog.NewJSONHandler(os.Stdout, options)
		} else {
			handler = slog.NewTextHandler(os.Stdout, options)
		}
		slog.SetDefault(slog.New(handler))
	})
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func NewLogger(component string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", component),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}
