package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TaskIdempotencyCleanup purges expired idempotency keys.
const TaskIdempotencyCleanup = "idempotency:cleanup"

// KeyCleaner removes idempotency keys older than a retention window.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob purges processed request keys.
type IdempotencyCleanupJob struct {
	Cleaner   KeyCleaner
	Retention time.Duration
	Metrics   ScanRecorder
	Logger    *slog.Logger
}

// NewIdempotencyCleanupTask builds the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil, asynq.Queue(QueueDefault))
}

// Handle executes the cleanup.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Cleaner == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	if j.Retention <= 0 {
		return asynq.SkipRetry
	}
	defer func() {
		if j.Metrics != nil {
			j.Metrics.JobProcessed(TaskIdempotencyCleanup, err)
		}
	}()
	removed, err := j.Cleaner.Cleanup(ctx, j.Retention)
	if err != nil {
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("purged idempotency keys", slog.Int64("removed", removed), slog.Duration("retention", j.Retention))
	}
	return nil
}
