package deps

import (
	"os"
	"path/filepath"
	"testing"

	"shotsync/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestMediaRequirementsAndMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	media := config.Default().Media
	media.FFmpegBinary = "ffmpeg-not-installed"
	media.FFprobeBinary = "ffprobe-not-installed"

	statuses := CheckBinaries(MediaRequirements(media))
	if len(statuses) != 2 {
		t.Fatalf("expected two media requirements, got %d", len(statuses))
	}
	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "FFmpeg" {
		t.Fatalf("expected only ffmpeg to be required, got %#v", missing)
	}
}
