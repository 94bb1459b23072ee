package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"shotsync/internal/logging"
	"shotsync/internal/services"
	"shotsync/internal/timeline"
)

// SliceOptions controls Slice.
type SliceOptions struct {
	OutputDir string
	Extension string
	Workers   int
	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
	Logger   *slog.Logger
}

// SliceResult lists what Slice produced, in range order. Superseded holds
// ranges skipped because a later range has the same shot id and would write
// the same file.
type SliceResult struct {
	Exported   []string
	Failed     []string
	Superseded []timeline.FrameRange
}

// ClipPath is where the clip for shotID lands.
func ClipPath(dir, shotID, ext string) string {
	return filepath.Join(dir, shotID+"."+ext)
}

// Slice trims every range out of source into OutputDir, at most Workers at a
// time. Failed trims are logged and listed in the result; only cancellation
// or an unusable output directory return an error.
func Slice(ctx context.Context, trimmer Trimmer, source string, ranges []timeline.FrameRange, opts SliceOptions) (SliceResult, error) {
	logger := logging.NewComponentLogger(opts.Logger, "media")
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return SliceResult{}, services.Wrap(services.ErrConfiguration, "media", "slice", "create output dir", err)
	}
	ext := opts.Extension
	if ext == "" {
		ext = "mp4"
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	last := make(map[string]int, len(ranges))
	for i, r := range ranges {
		last[r.ShotID] = i
	}
	var result SliceResult
	jobs := 0
	for i, r := range ranges {
		if last[r.ShotID] != i {
			result.Superseded = append(result.Superseded, r)
			logging.WarnWithContext(logger, "duplicate shot id; earlier range not exported", "trim_duplicate",
				logging.String(logging.FieldShotID, r.ShotID),
				logging.Int("start_frame", r.Start),
				logging.Int("end_frame", r.End),
				logging.String(logging.FieldImpact, "only the last range for this shot is exported"),
			)
			continue
		}
		jobs++
	}

	bar := newBar(jobs, opts.Progress)
	ok := make([]bool, len(ranges))
	var barMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, r := range ranges {
		if last[r.ShotID] != i {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			dest := ClipPath(opts.OutputDir, r.ShotID, ext)
			itemLogger := logging.WithContext(services.WithShotID(gctx, r.ShotID), logger)
			err := trimmer.Trim(gctx, source, r, dest)
			barMu.Lock()
			_ = bar.Add(1)
			barMu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.WarnWithContext(itemLogger, "clip export failed", "trim_failed",
					logging.Int("start_frame", r.Start),
					logging.Int("end_frame", r.End),
					logging.Error(err),
					logging.String(logging.FieldImpact, "clip will be missing from the output folder"),
					logging.String(logging.FieldErrorHint, "check the source video covers this frame range"),
				)
				return nil
			}
			ok[i] = true
			itemLogger.Info("clip exported", logging.String("path", dest))
			return nil
		})
	}
	waitErr := g.Wait()
	_ = bar.Finish()
	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		return SliceResult{}, fmt.Errorf("slice interrupted: %w", waitErr)
	}

	for i, r := range ranges {
		if last[r.ShotID] != i {
			continue
		}
		path := ClipPath(opts.OutputDir, r.ShotID, ext)
		if ok[i] {
			result.Exported = append(result.Exported, path)
		} else {
			result.Failed = append(result.Failed, r.ShotID)
		}
	}
	return result, nil
}

func newBar(total int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Exporting clips"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
	)
}
