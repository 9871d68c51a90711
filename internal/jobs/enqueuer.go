package jobs

import (
	"context"
	"errors"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const lateNoticeMaxRetry = 3

// Enqueuer publishes late-notice tasks to asynq.
type Enqueuer struct {
	client *asynq.Client
	log    *zap.Logger
}

func NewEnqueuer(client *asynq.Client, log *zap.Logger) *Enqueuer {
	return &Enqueuer{client: client, log: log}
}

// NotifyLate enqueues a late notice for rec. The task id is derived from the
// record, so enqueueing twice is a no-op.
func (e *Enqueuer) NotifyLate(ctx context.Context, rec *domain.AttendanceRecord) error {
	task, err := NewLateNoticeTask(rec)
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task,
		asynq.TaskID(LateNoticeTaskID(rec.ID.Hex())),
		asynq.MaxRetry(lateNoticeMaxRetry),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return err
	}

	e.log.Debug("late notice enqueued",
		zap.String(logger.FieldRecordID, rec.ID.Hex()),
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue))
	return nil
}

// NoopNotifier is used when no Redis is configured.
type NoopNotifier struct {
	Log *zap.Logger
}

func (n NoopNotifier) NotifyLate(_ context.Context, rec *domain.AttendanceRecord) error {
	if n.Log != nil {
		n.Log.Debug("late notice skipped, job queue disabled", zap.String(logger.FieldRecordID, rec.ID.Hex()))
	}
	return nil
}
