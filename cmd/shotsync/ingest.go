package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"shotsync/internal/breakdown"
	"shotsync/internal/config"
	"shotsync/internal/ledger"
	"shotsync/internal/logging"
	"shotsync/internal/media"
	"shotsync/internal/media/ffprobe"
	"shotsync/internal/preflight"
	"shotsync/internal/publish"
	"shotsync/internal/reconcile"
	"shotsync/internal/services"
	"shotsync/internal/timeline"
	"shotsync/internal/workspace"
)

// ingester runs one ingest request end to end.
type ingester struct {
	cfg      *config.Config
	logger   *slog.Logger
	out      io.Writer
	progress io.Writer
	confirm  reconcile.Confirmer
	now      func() time.Time
}

// ingestResult is what an ingest produced, filled in as far as it got.
type ingestResult struct {
	OutputDir     string
	ProcessedCSV  string
	Shots         int
	Clips         int
	FailedClips   int
	Pushed        bool
	Decision      reconcile.Decision
	Discrepancies int
	Tally         publish.Tally
}

func (r ingestResult) decisionLabel() string {
	if !r.Pushed {
		return "none"
	}
	return r.Decision.String()
}

func (r ingestResult) summary(req ingestRequest) string {
	var parts []string
	if req.CSVPath != "" {
		parts = append(parts, fmt.Sprintf("processed %s into %s", plural(r.Shots, "shot"), r.OutputDir))
	}
	if req.VideoPath != "" {
		clips := fmt.Sprintf("exported %s", plural(r.Clips, "clip"))
		if r.FailedClips > 0 {
			clips += fmt.Sprintf(" (%d failed)", r.FailedClips)
		}
		parts = append(parts, clips)
	}
	if r.Pushed {
		switch r.Decision {
		case reconcile.Proceed:
			parts = append(parts, fmt.Sprintf("pushed to %s/%s: %s", req.Project, req.Sequence, r.Tally))
		default:
			parts = append(parts, "push aborted")
		}
	}
	if len(parts) == 0 {
		return "Nothing to do."
	}
	text := strings.Join(parts, "; ")
	return strings.ToUpper(text[:1]) + text[1:] + "."
}

func (i *ingester) run(ctx context.Context, req ingestRequest) (ingestResult, error) {
	var result ingestResult
	if err := i.preflight(ctx, req); err != nil {
		return result, err
	}

	now := i.now()
	result.OutputDir = req.PushOnlyDir
	if result.OutputDir == "" {
		dir, err := workspace.NewRunDir(i.cfg.Paths.OutputDir, now)
		if err != nil {
			return result, services.Wrap(services.ErrConfiguration, "workspace", "create run dir", "", err)
		}
		result.OutputDir = dir
	}
	lock, err := workspace.Acquire(result.OutputDir)
	if err != nil {
		return result, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			i.logger.Warn("release folder lock failed", logging.Error(err))
		}
	}()
	i.logger.Info("ingest started",
		logging.String("output_dir", result.OutputDir),
		logging.String("mode", string(req.mode())),
	)

	var processed breakdown.Table
	if req.CSVPath != "" {
		sheet, table, err := i.process(req)
		if err != nil {
			return result, err
		}
		processed = table
		result.ProcessedCSV = filepath.Join(result.OutputDir, breakdown.ProcessedName(req.CSVPath, now))
		if err := breakdown.WriteFile(result.ProcessedCSV, processed); err != nil {
			return result, err
		}
		result.Shots = len(sheet.Records)
		i.logger.Info("processed breakdown written",
			logging.String("path", result.ProcessedCSV),
			logging.Int("shots", result.Shots),
		)

		if req.VideoPath != "" {
			exported, failed, err := i.cut(ctx, req.VideoPath, sheet, result.OutputDir)
			if err != nil {
				return result, err
			}
			result.Clips, result.FailedClips = exported, failed
		}
	} else {
		path, err := workspace.LatestCSV(result.OutputDir)
		if err != nil {
			return result, services.Wrap(services.ErrValidation, "workspace", "push-only", "", err)
		}
		result.ProcessedCSV = path
		processed, err = breakdown.ReadFile(path)
		if err != nil {
			return result, services.Wrap(services.ErrValidation, "breakdown", "read", path, err)
		}
		result.Shots = len(processed.Rows)
		i.logger.Info("using processed breakdown", logging.String("path", path))
	}

	if !req.pushes() {
		return result, nil
	}
	result.Pushed = true
	return result, i.push(ctx, req, processed, &result)
}

func (i *ingester) preflight(ctx context.Context, req ingestRequest) error {
	results := preflight.RunAll(ctx, i.cfg, preflight.Options{
		Media: req.VideoPath != "",
		Kitsu: req.pushes(),
	})
	for _, r := range results {
		if !r.Passed && r.Optional {
			logging.WarnWithContext(i.logger, "optional dependency unavailable", "preflight_optional",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
		}
	}
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(failed))
	for _, r := range failed {
		msgs = append(msgs, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(msgs, "; "), nil)
}

// process reads and normalizes the breakdown and builds the Kitsu import
// table.
func (i *ingester) process(req ingestRequest) (breakdown.Sheet, breakdown.Table, error) {
	table, err := breakdown.ReadFile(req.CSVPath)
	if err != nil {
		return breakdown.Sheet{}, breakdown.Table{}, services.Wrap(services.ErrValidation, "breakdown", "read", req.CSVPath, err)
	}
	cols := breakdown.ColumnsFromConfig(i.cfg.Breakdown)
	sheet, err := breakdown.Normalize(table, cols.Shot, cols.Processed()...)
	if err != nil {
		return breakdown.Sheet{}, breakdown.Table{}, services.Wrap(services.ErrValidation, "breakdown", "normalize", req.CSVPath, err)
	}
	if dups := sheet.Duplicates(); len(dups) > 0 {
		logging.WarnWithContext(i.logger, "duplicate shot ids in breakdown", "breakdown_duplicates",
			logging.Any("shot_ids", dups),
			logging.String(logging.FieldImpact, "later rows overwrite earlier ones in Kitsu and in the clip folder"),
			logging.String(logging.FieldErrorHint, "give every shot a unique <prefix>_<number> code"),
		)
	}
	processed, err := breakdown.Processed(sheet, cols, req.Sequence)
	if err != nil {
		return breakdown.Sheet{}, breakdown.Table{}, services.Wrap(services.ErrValidation, "breakdown", "convert", "", err)
	}
	return sheet, processed, nil
}

// cut partitions the edit and exports one clip per shot.
func (i *ingester) cut(ctx context.Context, video string, sheet breakdown.Sheet, outDir string) (int, int, error) {
	cols := breakdown.ColumnsFromConfig(i.cfg.Breakdown)
	ranges, err := timeline.Partition(sheet, cols.Duration, cols.FPS)
	if err != nil {
		return 0, 0, services.Wrap(services.ErrValidation, "timeline", "partition", "", err)
	}
	if dropped := len(sheet.Records) - len(ranges); dropped > 0 {
		logging.WarnWithContext(i.logger, "rows without a usable duration or fps skipped", "partition_dropped",
			logging.Int("rows", dropped),
			logging.String(logging.FieldImpact, "no clip is cut for these rows"),
		)
	}
	i.checkFrameCount(ctx, video, timeline.Total(ranges))

	res, err := media.Slice(ctx, media.NewFFmpegTrimmer(i.cfg.Media), video, ranges, media.SliceOptions{
		OutputDir: outDir,
		Extension: i.cfg.Media.Extension,
		Workers:   i.cfg.Media.Workers,
		Progress:  i.progress,
		Logger:    i.logger,
	})
	if err != nil {
		return 0, 0, err
	}
	return len(res.Exported), len(res.Failed), nil
}

// checkFrameCount warns when the breakdown does not cover the whole edit.
func (i *ingester) checkFrameCount(ctx context.Context, video string, expected int) {
	probe, err := ffprobe.Inspect(ctx, i.cfg.Media.FFprobeBinary, video)
	if err != nil {
		i.logger.Debug("ffprobe unavailable; frame count not checked", logging.Error(err))
		return
	}
	actual := probe.FrameCount()
	if actual == 0 || actual == expected {
		return
	}
	logging.WarnWithContext(i.logger, "breakdown length differs from edit", "frame_count_mismatch",
		logging.Int("breakdown_frames", expected),
		logging.Int("video_frames", actual),
		logging.String(logging.FieldImpact, "clips may be offset from the intended shots"),
		logging.String(logging.FieldErrorHint, "check the breakdown matches this cut of the edit"),
	)
}

// push reconciles, waits for the gate, then imports and publishes.
func (i *ingester) push(ctx context.Context, req ingestRequest, processed breakdown.Table, result *ingestResult) error {
	local, err := ledger.FromLocal(processed)
	if err != nil {
		return services.Wrap(services.ErrValidation, "ledger", "local", result.ProcessedCSV, err)
	}
	remote, err := fetchRemote(ctx, i.cfg, req.Project, req.Sequence, i.logger)
	if err != nil {
		return err
	}
	artifacts, err := workspace.Artifacts(result.OutputDir, i.cfg.Media.Extension)
	if err != nil {
		return err
	}
	ids := make([]string, len(artifacts))
	for n, a := range artifacts {
		ids[n] = reconcile.ArtifactID(a)
	}

	report := reconcile.Validate(local, remote.ledger, ids)
	result.Discrepancies = discrepancyCount(report)
	if !report.Empty() {
		logging.WarnWithContext(i.logger, "local and remote shots differ", "reconcile_discrepancies",
			logging.String("summary", report.Summary()),
			logging.String(logging.FieldImpact, "push waits for confirmation"),
		)
	}
	result.Decision = reconcile.Gate(report, i.confirm)
	if result.Decision == reconcile.Abort {
		fmt.Fprintln(i.out, "Ingest aborted by user.")
		i.logger.Info("push aborted at confirmation gate")
		return nil
	}

	if err := remote.client.ImportShots(ctx, remote.project, result.ProcessedCSV); err != nil {
		return err
	}
	i.logger.Info("shots imported", logging.String("project", remote.project.Name))

	taskType, err := remote.client.GetTaskType(ctx, i.cfg.Kitsu.TaskType)
	if err != nil {
		return err
	}
	status, err := remote.client.GetTaskStatus(ctx, i.cfg.Kitsu.TaskStatus)
	if err != nil {
		return err
	}
	tasks, err := remote.client.ListTasks(ctx, remote.project, taskType)
	if err != nil {
		return err
	}
	taskMap, err := publish.MapTasks(ctx, tasks, remote.client, i.logger)
	if err != nil {
		return err
	}

	orchestrator := publish.NewOrchestrator(publish.NewKitsuPublisher(remote.client, status, i.cfg.Kitsu.Comment), i.logger)
	result.Tally = orchestrator.Run(ctx, artifacts, taskMap)
	i.logger.Info("publish finished",
		logging.Int("matched", result.Tally.Matched),
		logging.Int("unmatched", result.Tally.Unmatched),
		logging.Int("failed", result.Tally.Failed),
	)
	return ctx.Err()
}
