// logging.go - structured, leveled diagnostics.
//
// Grounded on rcornwell-S370's util/logger/logger.go: a small slog.Handler
// wrapper that renders attributes as plain "key=value" text to a writer
// rather than JSON, which stays readable at a terminal. The teacher repo
// itself only uses fmt.Printf for diagnostics; this is a genuine ambient
// addition this system's SPEC_FULL.md calls for (§4.13), grounded on the
// same idiom a sibling pack repo already uses for identical reasons.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// plainHandler is a slog.Handler that writes "time level msg
// component=... key=value ..." lines, one per record.
type plainHandler struct {
	out   io.Writer
	mu    *sync.Mutex
	level slog.Level
	attrs []slog.Attr
}

func newPlainHandler(out io.Writer, level slog.Level) *plainHandler {
	return &plainHandler{out: out, mu: &sync.Mutex{}, level: level}
}

func (h *plainHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *plainHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", r.Time.Format("2006-01-02T15:04:05.000"), r.Level, r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *plainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *plainHandler) WithGroup(name string) slog.Handler {
	return h // groups are not used by this system's diagnostics
}

// Logger wraps *slog.Logger with the component-name convention used
// throughout this system's device files.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger writing to out at the given component name.
// VM_TRACE enables debug-level output; otherwise only Info and above are
// emitted.
func NewLogger(out io.Writer, component string) *Logger {
	level := slog.LevelInfo
	if truthyEnv("VM_TRACE") {
		level = slog.LevelDebug
	}
	h := newPlainHandler(out, level)
	l := slog.New(h).With("component", component)
	return &Logger{Logger: l}
}

// NewDefaultLogger creates a Logger writing to stderr.
func NewDefaultLogger(component string) *Logger {
	return NewLogger(os.Stderr, component)
}
