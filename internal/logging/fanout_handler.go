package logging

import (
	"context"
	"log/slog"
)

// sinkHandler duplicates records across the console and log file sinks.
// Each sink keeps its own level filter.
type sinkHandler struct {
	sinks []slog.Handler
}

func newFanoutHandler(sinks ...slog.Handler) slog.Handler {
	var live []slog.Handler
	for _, sink := range sinks {
		if sink != nil {
			live = append(live, sink)
		}
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	default:
		return &sinkHandler{sinks: live}
	}
}

func (h *sinkHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range h.sinks {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *sinkHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	last := len(h.sinks) - 1
	for i, sink := range h.sinks {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if i != last {
			rec = record.Clone()
		}
		if err := sink.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(sink slog.Handler) slog.Handler { return sink.WithAttrs(attrs) })
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(sink slog.Handler) slog.Handler { return sink.WithGroup(name) })
}

func (h *sinkHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(h.sinks))
	for i, sink := range h.sinks {
		next[i] = fn(sink)
	}
	return &sinkHandler{sinks: next}
}
