package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "prores", "codec_type": "video", "width": 1920, "height": 1080,
     "r_frame_rate": "24000/1001", "avg_frame_rate": "24000/1001", "nb_frames": "1440", "duration": "60.060000"}
  ],
  "format": {"filename": "edit.mov", "duration": "60.060000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestParseAndHelpers(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	video, ok := result.Video()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if math.Abs(video.FrameRate()-23.976) > 1e-3 {
		t.Fatalf("unexpected frame rate %v", video.FrameRate())
	}
	if result.FrameCount() != 1440 {
		t.Fatalf("unexpected frame count %d", result.FrameCount())
	}
	if result.DurationSeconds() != 60.06 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
}

func TestFrameCountFallsBackToDuration(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", AvgFrameRate: "0/0", RFrameRate: "25/1"}},
		Format:  Format{Duration: "4.0"},
	}
	if got := result.FrameCount(); got != 100 {
		t.Fatalf("expected 100 frames, got %d", got)
	}
}

func TestHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", AvgFrameRate: "bad", RFrameRate: "1/0", NbFrames: "N/A"}},
		Format:  Format{Duration: "nope"},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.FrameCount() != 0 {
		t.Fatalf("expected frame count 0, got %d", result.FrameCount())
	}
	if _, ok := (Result{}).Video(); ok {
		t.Fatal("expected no video stream")
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat <<'JSON'\n" + sampleJSON + "\nJSON\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	result, err := Inspect(context.Background(), stub, "edit.mov")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.FrameCount() != 1440 {
		t.Fatalf("unexpected frame count %d", result.FrameCount())
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
