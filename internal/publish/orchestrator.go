package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"shotsync/internal/logging"
	"shotsync/internal/reconcile"
	"shotsync/internal/services"
)

// Tally counts publish outcomes.
type Tally struct {
	Matched   int `json:"matched" yaml:"matched"`
	Unmatched int `json:"unmatched" yaml:"unmatched"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Total is the number of clips considered.
func (t Tally) Total() int { return t.Matched + t.Unmatched + t.Failed }

func (t Tally) String() string {
	return fmt.Sprintf("matched=%d unmatched=%d failed=%d", t.Matched, t.Unmatched, t.Failed)
}

// Orchestrator publishes clips one at a time.
type Orchestrator struct {
	publisher Publisher
	logger    *slog.Logger
	stat      func(string) (fs.FileInfo, error)
}

// NewOrchestrator builds an orchestrator around publisher.
func NewOrchestrator(publisher Publisher, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		publisher: publisher,
		logger:    logging.NewComponentLogger(logger, "publish"),
		stat:      os.Stat,
	}
}

// Run publishes every artifact that maps to a task. tasks is keyed by shot
// id, as returned by MapTasks. Clips without a task, or gone from disk, are
// unmatched; clips whose remote calls fail are failed. Once ctx is done the
// remaining clips are counted as unmatched.
func (o *Orchestrator) Run(ctx context.Context, artifacts []string, tasks map[string]string) Tally {
	var tally Tally
	for i, path := range artifacts {
		if ctx.Err() != nil {
			remaining := len(artifacts) - i
			tally.Unmatched += remaining
			logging.WarnWithContext(o.logger, "publish interrupted", "publish_cancelled",
				logging.Int("remaining", remaining),
				logging.String(logging.FieldImpact, "remaining clips were not published"),
				logging.String(logging.FieldErrorHint, "re-run with --push-only on the output folder"),
			)
			break
		}

		shotID := reconcile.ArtifactID(path)
		itemCtx := services.WithShotID(ctx, shotID)
		logger := logging.WithContext(itemCtx, o.logger)

		taskID, ok := tasks[shotID]
		if !ok {
			tally.Unmatched++
			logging.WarnWithContext(logger, "no task for clip", "publish_unmatched",
				logging.String("path", path),
				logging.String(logging.FieldImpact, "clip not published"),
				logging.String(logging.FieldErrorHint, "check the shot exists in the sequence with the configured task type"),
			)
			continue
		}
		if _, err := o.stat(path); err != nil {
			tally.Unmatched++
			logging.WarnWithContext(logger, "clip missing on disk", "publish_missing_file",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "clip not published"),
			)
			continue
		}

		if err := o.publishOne(itemCtx, taskID, path); err != nil {
			tally.Failed++
			logging.ErrorWithContext(logger, "publish failed", "publish_failed",
				logging.String("task_id", taskID),
				logging.String("path", path),
				logging.Error(err),
			)
			continue
		}
		tally.Matched++
		logger.Info("clip published", logging.String("task_id", taskID))
	}
	return tally
}

func (o *Orchestrator) publishOne(ctx context.Context, taskID, path string) error {
	commentID, err := o.publisher.Comment(ctx, taskID)
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	previewID, err := o.publisher.AttachPreview(ctx, taskID, commentID, path)
	if err != nil {
		return fmt.Errorf("add preview: %w", err)
	}
	if previewID == "" {
		return errors.New("add preview: empty preview id")
	}
	if err := o.publisher.SetMainPreview(ctx, previewID); err != nil {
		return fmt.Errorf("set main preview: %w", err)
	}
	return nil
}
