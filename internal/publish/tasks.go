package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shotsync/internal/logging"
	"shotsync/internal/services"
	"shotsync/internal/services/kitsu"
)

// EntityLookup resolves a task's entity id to the entity.
type EntityLookup interface {
	GetEntity(ctx context.Context, id string) (kitsu.Entity, error)
}

// MapTasks returns shot name to task id. Tasks without an entity, or whose
// entity no longer exists, are skipped. Any other lookup failure aborts the
// mapping. When two tasks share a shot name the later one wins.
func MapTasks(ctx context.Context, tasks []kitsu.Task, lookup EntityLookup, logger *slog.Logger) (map[string]string, error) {
	logger = logging.NewComponentLogger(logger, "publish")
	out := make(map[string]string, len(tasks))
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if task.EntityID == "" {
			logger.Debug("task has no entity; skipping", logging.String("task_id", task.ID))
			continue
		}
		entity, err := lookup.GetEntity(ctx, task.EntityID)
		if errors.Is(err, services.ErrNotFound) {
			logger.Debug("task entity not found; skipping",
				logging.String("task_id", task.ID),
				logging.String("entity_id", task.EntityID),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve entity %s for task %s: %w", task.EntityID, task.ID, err)
		}
		if entity.Name == "" {
			continue
		}
		if prev, ok := out[entity.Name]; ok {
			logger.Debug("shot has several tasks; using the later one",
				logging.String(logging.FieldShotID, entity.Name),
				logging.String("replaced_task_id", prev),
				logging.String("task_id", task.ID),
			)
		}
		out[entity.Name] = task.ID
	}
	return out, nil
}
