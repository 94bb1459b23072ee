package main

import (
	"context"
	"log/slog"

	"shotsync/internal/config"
	"shotsync/internal/history"
	"shotsync/internal/logging"
	"shotsync/internal/services"
)

// runRecorder writes ingest runs to the history database. History is
// best effort: when the database cannot be opened the run proceeds and a
// warning is logged.
type runRecorder struct {
	store  *history.Store
	logger *slog.Logger
	run    *history.Run
}

func openRecorder(ctx context.Context, cfg *config.Config, logger *slog.Logger) *runRecorder {
	rec := &runRecorder{logger: logger}
	store, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in shotsync runs"),
		)
		return rec
	}
	rec.store = store
	return rec
}

// start records the run and returns ctx carrying its id.
func (r *runRecorder) start(ctx context.Context, req ingestRequest) context.Context {
	r.run = &history.Run{
		Mode:      req.mode(),
		CSVPath:   req.CSVPath,
		VideoPath: req.VideoPath,
		Project:   req.Project,
		Sequence:  req.Sequence,
		OutputDir: req.PushOnlyDir,
	}
	if r.store == nil {
		return ctx
	}
	if err := r.store.Start(ctx, r.run); err != nil {
		r.logger.Warn("record run start failed", logging.Error(err))
		return ctx
	}
	return services.WithRunID(ctx, r.run.ID)
}

func (r *runRecorder) finish(ctx context.Context, result ingestResult, runErr error) {
	if r.store == nil || r.run == nil || r.run.ID == "" {
		return
	}
	r.run.OutputDir = result.OutputDir
	r.run.Shots = result.Shots
	r.run.Clips = result.Clips
	r.run.Discrepancies = result.Discrepancies
	r.run.Decision = result.decisionLabel()
	r.run.Matched = result.Tally.Matched
	r.run.Unmatched = result.Tally.Unmatched
	r.run.Failed = result.Tally.Failed
	if runErr != nil {
		r.run.Error = runErr.Error()
	}
	if err := r.store.Finish(context.WithoutCancel(ctx), r.run); err != nil {
		r.logger.Warn("record run outcome failed", logging.Error(err))
	}
}

func (r *runRecorder) close() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close run history failed", logging.Error(err))
	}
}
