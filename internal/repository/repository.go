package repository

import (
	"context"
	"time"

	"alcyxob/gym-attendance/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrConflict  = RepositoryError("conflict")
	ErrDuplicate = RepositoryError("duplicate key")
	ErrInvalid   = RepositoryError("invalid document")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TrainerLookup resolves a trainer's per-session base pay.
type TrainerLookup interface {
	GetBasePay(ctx context.Context, trainerID primitive.ObjectID) (float64, error)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	TrainerLookup
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetBasePay(ctx context.Context, trainerID primitive.ObjectID, basePay float64) error
}

// SessionLookup is the read access the attendance workflows need.
type SessionLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
}

// SessionRepository defines the interface for interacting with scheduled sessions.
type SessionRepository interface {
	SessionLookup
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	// ListByTrainer returns sessions whose date falls in [from, to), ordered by date then start time.
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.Session, error)
}

// AttendanceRepository stores attendance records. At most one open record
// (not yet checked out) may exist per trainer and session.
type AttendanceRepository interface {
	FindOpenRecord(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.AttendanceRecord, error)
	FindOpenRecordByID(ctx context.Context, id primitive.ObjectID) (*domain.AttendanceRecord, error)
	// Insert fails with ErrConflict if an open record already exists for the same trainer and session.
	Insert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	// UpdateCheckout closes an open record. It fails with ErrConflict if the
	// record is missing or already closed.
	UpdateCheckout(ctx context.Context, id primitive.ObjectID, checkOut time.Time, status domain.CheckOutStatus, durationMinutes int) (*domain.AttendanceRecord, error)
	// ListByTrainer returns records whose check-in falls in [from, to), oldest first.
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.AttendanceRecord, error)
}

// PayrollReportRepository defines the interface for exported report metadata.
type PayrollReportRepository interface {
	Create(ctx context.Context, report *domain.PayrollReport) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PayrollReport, error)
}

// NotificationRepository stores trainer notifications.
type NotificationRepository interface {
	// UpsertForRecord stores n unless a notification for n.RecordID already exists.
	// It reports whether a new notification was created.
	UpsertForRecord(ctx context.Context, n *domain.Notification) (bool, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Notification, error)
}
