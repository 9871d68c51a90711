package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/logger"
	"alcyxob/gym-attendance/internal/repository"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LateNoticeHandler turns late-notice tasks into trainer notifications.
type LateNoticeHandler struct {
	notifications repository.NotificationRepository
	log           *zap.Logger
}

func NewLateNoticeHandler(notifications repository.NotificationRepository, log *zap.Logger) *LateNoticeHandler {
	return &LateNoticeHandler{notifications: notifications, log: log}
}

// ProcessTask implements asynq.Handler.
func (h *LateNoticeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload LateNoticePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode late notice payload: %v: %w", err, asynq.SkipRetry)
	}
	payload.Normalize()

	recordID, err := primitive.ObjectIDFromHex(payload.RecordID)
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", payload.RecordID, asynq.SkipRetry)
	}
	trainerID, err := primitive.ObjectIDFromHex(payload.TrainerID)
	if err != nil {
		return fmt.Errorf("invalid trainer id %q: %w", payload.TrainerID, asynq.SkipRetry)
	}

	created, err := h.notifications.UpsertForRecord(ctx, &domain.Notification{
		TrainerID: trainerID,
		RecordID:  recordID,
		Kind:      domain.NotificationLateCheckIn,
		Message:   payload.Message(),
	})
	if err != nil {
		h.log.Error("failed to store late notice",
			zap.String(logger.FieldRecordID, payload.RecordID), zap.Error(err))
		return err
	}

	h.log.Info("late notice processed",
		zap.String(logger.FieldTaskType, t.Type()),
		zap.String(logger.FieldRecordID, payload.RecordID),
		zap.String(logger.FieldTrainerID, payload.TrainerID),
		zap.Int("minutes_late", payload.MinutesLate),
		zap.Bool("created", created))
	return nil
}

// NewServeMux registers every task handler.
func NewServeMux(late *LateNoticeHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeLateNotice, late)
	return mux
}
