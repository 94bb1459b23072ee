package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shotsync/internal/config"
	"shotsync/internal/services"
)

func TestNewJSONWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "shotsync.log")

	logger, err := New(Options{Level: "info", Format: "json", Console: &console, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("clip exported", String("path", "SH_010.mp4"))
	logger.Debug("hidden")

	var record map[string]any
	if err := json.Unmarshal(console.Bytes(), &record); err != nil {
		t.Fatalf("decode console record: %v\n%s", err, console.String())
	}
	if record["msg"] != "clip exported" || record["level"] != "info" || record["path"] != "SH_010.mp4" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
	if strings.Contains(console.String(), "hidden") {
		t.Fatal("debug record should be filtered at info level")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"clip exported"`) {
		t.Fatalf("expected record in log file, got %s", data)
	}
}

func TestNewConsoleFormatIsPlainWhenNotTerminal(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Console: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("remote shots loaded", Int("shots", 3))
	out := console.String()
	if !strings.Contains(out, "remote shots loaded") || !strings.Contains(out, "shots=3") {
		t.Fatalf("unexpected console output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI colour for a buffer, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFilePath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = "/var/log/shotsync"
	if got := FilePath(&cfg); got != "/var/log/shotsync/shotsync.log" {
		t.Fatalf("unexpected path %q", got)
	}
	if FilePath(nil) != "" {
		t.Fatal("expected empty path for nil config")
	}
}

func TestWithContextAddsRunAndShot(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithShotID(services.WithRunID(context.Background(), "run-1"), "SH_010")
	WarnWithContext(WithContext(ctx, logger), "clip missing", "publish_missing_file")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[FieldRunID] != "run-1" || record[FieldShotID] != "SH_010" {
		t.Fatalf("missing context fields: %v", record)
	}
	if record[FieldEventType] != "publish_missing_file" || record[FieldImpact] == nil || record[FieldErrorHint] == nil {
		t.Fatalf("missing warning fields: %v", record)
	}
}
