package memory

import (
	"context"
	"sync"
	"time"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayrollReportRepository implements repository.PayrollReportRepository.
type PayrollReportRepository struct {
	mu      sync.RWMutex
	reports map[primitive.ObjectID]domain.PayrollReport
}

// NewPayrollReportRepository creates an empty in-memory report store.
func NewPayrollReportRepository() *PayrollReportRepository {
	return &PayrollReportRepository{reports: make(map[primitive.ObjectID]domain.PayrollReport)}
}

// Create stores report metadata and assigns its ID.
func (r *PayrollReportRepository) Create(_ context.Context, report *domain.PayrollReport) (primitive.ObjectID, error) {
	if report.TrainerID == primitive.NilObjectID || report.S3ObjectKey == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report.ID = primitive.NewObjectID()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now().UTC()
	}
	r.reports[report.ID] = *report
	return report.ID, nil
}

// GetByID finds a report by ID.
func (r *PayrollReportRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PayrollReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rep, nil
}

// NotificationRepository implements repository.NotificationRepository.
type NotificationRepository struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

// NewNotificationRepository creates an empty in-memory notification store.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// UpsertForRecord stores n unless a notification of the same kind already
// exists for its record. It reports whether n was inserted.
func (r *NotificationRepository) UpsertForRecord(_ context.Context, n *domain.Notification) (bool, error) {
	if n.TrainerID == primitive.NilObjectID || n.RecordID == primitive.NilObjectID {
		return false, repository.ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.notifications {
		if existing.RecordID == n.RecordID && existing.Kind == n.Kind {
			return false, nil
		}
	}
	n.ID = primitive.NewObjectID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	r.notifications = append(r.notifications, *n)
	return true, nil
}

// ListByTrainer returns the trainer's notifications, newest first.
func (r *NotificationRepository) ListByTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Notification{}
	// Walk backwards for newest first
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].TrainerID == trainerID {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}
