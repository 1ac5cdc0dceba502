// Package logger provides structured logging setup for TaskScheduler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Strob0t/TaskScheduler/internal/config"
)

const (
	asyncBufferSize = 4096
	asyncWorkers    = 1
)

// New creates a *slog.Logger from the given Logging config.
// Output is JSON to stdout with a "service" attribute on every record and a
// "request_id" attribute whenever the context carries one.
// The returned Closer must be closed on shutdown to flush async output.
func New(cfg config.Logging) (*slog.Logger, Closer) {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg config.Logging, w io.Writer) (*slog.Logger, Closer) {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	var closer Closer = nopCloser{}
	if cfg.Async {
		ah := NewAsyncHandler(handler, asyncBufferSize, asyncWorkers)
		handler = ah
		closer = ah
	}

	// Request IDs are read before records reach the async queue, which drops the context.
	handler = &requestIDHandler{inner: handler}

	return slog.New(handler).With("service", cfg.Service), closer
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
