package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"
)

var (
	debugMode bool
	level     = new(slog.LevelVar)
	base      *slog.Logger
	current   atomic.Value // slog.Handler
)

func init() {
	level.Set(slog.LevelInfo)
	SetOutput(os.Stderr)
}

// SetOutput redirects all log output. Tests use it to silence or capture logs.
// Loggers returned by With follow later calls.
func SetOutput(w io.Writer) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	current.Store(h)
	base = slog.New(h)
	slog.SetDefault(base)
}

func SetDebugMode(enabled bool) {
	debugMode = enabled
	if debugMode {
		level.Set(slog.LevelDebug)
		Debug("Debug mode enabled")
	} else {
		level.Set(slog.LevelInfo)
	}
}

func IsDebugMode() bool {
	return debugMode
}

// With returns a structured logger carrying the given attributes, e.g.
// logger.With("component", "openrouter-provider").
func With(args ...any) *slog.Logger {
	return slog.New(&switchHandler{}).With(args...)
}

// switchHandler resolves the output handler set by SetOutput on every record
// and replays its attributes and groups onto it.
type switchHandler struct {
	wrap func(slog.Handler) slog.Handler
}

func (h *switchHandler) target() slog.Handler {
	t := current.Load().(*slog.TextHandler)
	if h.wrap == nil {
		return t
	}
	return h.wrap(t)
}

func (h *switchHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return current.Load().(*slog.TextHandler).Enabled(ctx, lvl)
}

func (h *switchHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.target().Handle(ctx, r)
}

func (h *switchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.then(func(t slog.Handler) slog.Handler { return t.WithAttrs(attrs) })
}

func (h *switchHandler) WithGroup(name string) slog.Handler {
	return h.then(func(t slog.Handler) slog.Handler { return t.WithGroup(name) })
}

func (h *switchHandler) then(next func(slog.Handler) slog.Handler) slog.Handler {
	prev := h.wrap
	return &switchHandler{wrap: func(t slog.Handler) slog.Handler {
		if prev != nil {
			t = prev(t)
		}
		return next(t)
	}}
}

func Debug(format string, args ...interface{}) {
	output(slog.LevelDebug, format, args...)
}

func Info(format string, args ...interface{}) {
	output(slog.LevelInfo, format, args...)
}

func Warn(format string, args ...interface{}) {
	output(slog.LevelWarn, format, args...)
}

func Error(format string, args ...interface{}) {
	output(slog.LevelError, format, args...)
}

// output records the caller of the exported helper as the log source.
func output(lvl slog.Level, format string, args ...interface{}) {
	ctx := context.Background()
	if !base.Enabled(ctx, lvl) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), lvl, fmt.Sprintf(format, args...), pcs[0])
	_ = base.Handler().Handle(ctx, r)
}

// Request logging function for HTTP requests
func LogRequest(method, path, remoteAddr string) {
	if debugMode {
		Debug("HTTP %s %s from %s", method, path, remoteAddr)
	}
}

// Response logging function for HTTP responses
func LogResponse(method, path string, statusCode int, duration string) {
	if debugMode {
		Debug("HTTP %s %s -> %d (%s)", method, path, statusCode, duration)
	}
}
