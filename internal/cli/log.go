// Package cli implements the apilink command-line interface.
//
// This package provides commands for resolving symbol names to documentation
// links, expanding <ApiLink /> tags in documents, managing the package mapping
// table and serving resolution over HTTP. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - resolve: Print the documentation URL of one or more symbols
//   - render: Print a symbol as an HTML or Markdown link
//   - expand: Replace <ApiLink /> tags in MDX or Markdown files
//   - mapping: Show, validate, build and publish the package mapping table
//   - serve: Run the HTTP resolution API
//   - cache: Manage the mapping snapshot cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Expanded 12 tags in 3 files (4ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Log-backed observability hooks
// =============================================================================

// logHooks reports resolver, mapping and cache events to a logger. The serve
// command registers them so every resolution is visible at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnResolve(ctx context.Context, name, pkg string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "symbol", name, "error", err)
		return
	}
	h.logger.Debug("resolved", "symbol", name, "package", pkg, "duration", d)
}

func (h logHooks) OnLoad(ctx context.Context, source string, entries int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("mapping load failed", "source", source, "error", err)
		return
	}
	h.logger.Info("mapping loaded", "source", source, "entries", entries, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnPublish(ctx context.Context, source string, entries int, err error) {
	if err != nil {
		h.logger.Error("mapping publish failed", "source", source, "error", err)
		return
	}
	h.logger.Info("mapping published", "source", source, "entries", entries)
}

func (h logHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
