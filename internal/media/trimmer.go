package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"shotsync/internal/config"
	"shotsync/internal/services"
	"shotsync/internal/timeline"
)

// Trimmer writes the frames of one range of source to dest.
type Trimmer interface {
	Trim(ctx context.Context, source string, r timeline.FrameRange, dest string) error
}

// FFmpegTrimmer re-encodes each range with ffmpeg. Audio is dropped.
type FFmpegTrimmer struct {
	Binary      string
	VideoCodec  string
	PixelFormat string
	CRF         int
}

// NewFFmpegTrimmer configures a trimmer from the [media] section.
func NewFFmpegTrimmer(cfg config.Media) *FFmpegTrimmer {
	return &FFmpegTrimmer{
		Binary:      cfg.FFmpegBinary,
		VideoCodec:  cfg.VideoCodec,
		PixelFormat: cfg.PixelFormat,
		CRF:         cfg.CRF,
	}
}

// Args returns the ffmpeg argument list for one range.
func (t *FFmpegTrimmer) Args(source string, r timeline.FrameRange, dest string) []string {
	filter := fmt.Sprintf("trim=start_frame=%d:end_frame=%d,setpts=PTS-STARTPTS", r.Start, r.End)
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-i", source,
		"-map", "0:v:0",
		"-vf", filter,
		"-an",
		"-c:v", t.VideoCodec,
		"-pix_fmt", t.PixelFormat,
		"-crf", strconv.Itoa(t.CRF),
		dest,
	}
}

// Trim runs ffmpeg and reports its stderr on failure.
func (t *FFmpegTrimmer) Trim(ctx context.Context, source string, r timeline.FrameRange, dest string) error {
	if r.End <= r.Start {
		return services.Wrap(services.ErrValidation, "media", "trim", fmt.Sprintf("empty range %d-%d for %s", r.Start, r.End, r.ShotID), nil)
	}
	binary := strings.TrimSpace(t.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, t.Args(source, r, dest)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return services.Wrap(services.ErrExternalTool, "media", "ffmpeg", strings.TrimSpace(stderr.String()), err)
		}
		return services.Wrap(services.ErrExternalTool, "media", "ffmpeg", "start", err)
	}
	return nil
}
