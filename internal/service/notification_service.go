package service

import (
	"context"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---
type NotificationService interface {
	ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Notification, error)
}

type notificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications}
}

// ListForTrainer returns the trainer's notifications, newest first.
func (s *notificationService) ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Notification, error) {
	list, err := s.notifications.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, storageError(err)
	}
	return list, nil
}
