package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"partydeck/internal/game"
)

// deckHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<runID>\t<operation>\t<message>\t<key=value ...>
//
// runID identifies one process invocation, operation the CLI command it
// ran; keeping them separate fields makes a serve run's log greppable by
// command without parsing composite ids.
type deckHandler struct {
	w         io.Writer
	runID     string
	operation string
	debug     bool
	attrs     []slog.Attr
}

// Debug records are suppressed unless PARTYDECK_DEBUG is set. The
// session channel logs every dropped message at Debug, which is noise
// over the lifetime of a serve run and signal when chasing a sync bug.
func (h *deckHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.debug || level > slog.LevelDebug
}

func (h *deckHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	level := r.Level.String()

	_, err := fmt.Fprintf(h.w, "%s\t%s\t%s\t%s\t%s", ts, level, h.runID, h.operation, r.Message)
	if err != nil {
		return err
	}

	// Write pre-set attrs.
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
	}

	// Write per-record attrs.
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
		return true
	})

	_, err = fmt.Fprintln(h.w)
	return err
}

func (h *deckHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &deckHandler{
		w:         h.w,
		runID:     h.runID,
		operation: h.operation,
		debug:     h.debug,
		attrs:     append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *deckHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes to both logDir/partydeck.log
// and stderr. It returns the slog.Logger, the open log file (for cleanup), and
// any error.
func newLogger(logDir, runID, operation string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "partydeck.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	w := io.MultiWriter(f, os.Stderr)
	handler := &deckHandler{
		w:         w,
		runID:     runID,
		operation: operation,
		debug:     os.Getenv("PARTYDECK_DEBUG") != "",
	}
	return slog.New(handler), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the game.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

var _ game.Logger = (*slogAdapter)(nil)
