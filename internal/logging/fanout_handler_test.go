package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every sink is nil")
	}

	var buf bytes.Buffer
	console := slog.NewJSONHandler(&buf, nil)
	if got := newFanoutHandler(nil, console, nil); got != console {
		t.Fatalf("expected lone sink returned unwrapped, got %T", got)
	}
}

func TestFanoutHandlerSinkLevels(t *testing.T) {
	var console, file bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	ctx := context.Background()
	if !h.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("expected debug enabled through the file sink")
	}

	logger := slog.New(h)
	logger.Debug("trim started", slog.String("shot_id", "SH_010"))
	logger.Warn("clip export failed", slog.String("shot_id", "SH_020"))

	if strings.Contains(console.String(), "trim started") {
		t.Fatalf("console sink should drop debug records: %s", console.String())
	}
	if !strings.Contains(console.String(), "clip export failed") {
		t.Fatalf("console sink missing warning: %s", console.String())
	}
	for _, want := range []string{"trim started", "clip export failed", `"shot_id":"SH_020"`} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file sink missing %q: %s", want, file.String())
		}
	}
}

func TestFanoutHandlerNoSinkEnabled(t *testing.T) {
	var a, b bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info disabled when both sinks filter it")
	}
}

func TestFanoutHandlerDerivedHandlers(t *testing.T) {
	var a, b bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("run_id", "r-1")}).WithGroup("kitsu"))
	logger.Info("preview attached", slog.String("task_id", "task-1"))

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		out := buf.String()
		if !strings.Contains(out, `"run_id":"r-1"`) {
			t.Errorf("%s sink missing run attr: %s", name, out)
		}
		if !strings.Contains(out, `"kitsu":{"task_id":"task-1"}`) {
			t.Errorf("%s sink missing grouped attr: %s", name, out)
		}
	}
}
