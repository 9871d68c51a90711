package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/logger"
	"alcyxob/gym-attendance/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrUserNotTrainer     = errors.New("user is not a trainer")
	ErrSessionEndsEarly   = errors.New("session end time must be after its start time")
	ErrInvalidBasePay     = errors.New("base pay must not be negative")
	ErrInvalidPeriod      = errors.New("period start must be before its end")
	ErrSessionFieldsEmpty = errors.New("trainer ID, date, start and end time are required")
)

// NewSessionInput carries what an admin provides to schedule a session.
type NewSessionInput struct {
	TrainerID primitive.ObjectID
	Title     string
	Date      time.Time
	StartTime string
	EndTime   string
}

// --- Service Interface ---
type ScheduleService interface {
	CreateSession(ctx context.Context, in NewSessionInput) (*domain.Session, error)
	ListTrainerSessions(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.Session, error)
	SetBasePay(ctx context.Context, trainerID primitive.ObjectID, basePay float64) error
}

// --- Service Implementation ---

type scheduleService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	clock    attendance.Clock
	log      *zap.Logger
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(users repository.UserRepository, sessions repository.SessionRepository, clock attendance.Clock, log *zap.Logger) ScheduleService {
	return &scheduleService{users: users, sessions: sessions, clock: clock, log: log}
}

// CreateSession schedules a session for a trainer.
func (s *scheduleService) CreateSession(ctx context.Context, in NewSessionInput) (*domain.Session, error) {
	// 1. Validate Inputs
	if in.TrainerID == primitive.NilObjectID || in.Date.IsZero() || in.StartTime == "" || in.EndTime == "" {
		return nil, ErrSessionFieldsEmpty
	}
	start, err := s.clock.ToInstant(in.Date, in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := s.clock.ToInstant(in.Date, in.EndTime)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, ErrSessionEndsEarly
	}

	// 2. The assignee must be a trainer
	if err := s.requireTrainer(ctx, in.TrainerID); err != nil {
		return nil, err
	}

	// 3. Save, with the date normalised to local midnight
	session := &domain.Session{
		TrainerID: in.TrainerID,
		Title:     in.Title,
		Date:      s.clock.Day(in.Date),
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	id, err := s.sessions.Create(ctx, session)
	if err != nil {
		return nil, storageError(err)
	}
	session.ID = id

	s.log.Info("session scheduled",
		zap.String(logger.FieldSessionID, id.Hex()),
		zap.String(logger.FieldTrainerID, in.TrainerID.Hex()),
		zap.Time("start", start), zap.Time("end", end))
	return session, nil
}

// ListTrainerSessions retrieves the trainer's sessions dated within [from, to).
func (s *scheduleService) ListTrainerSessions(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.Session, error) {
	if !from.Before(to) {
		return nil, ErrInvalidPeriod
	}
	sessions, err := s.sessions.ListByTrainer(ctx, trainerID, from, to)
	if err != nil {
		return nil, storageError(err)
	}
	return sessions, nil
}

// SetBasePay updates the per-session pay used for future check-ins.
// Existing records keep the pay captured when they were created.
func (s *scheduleService) SetBasePay(ctx context.Context, trainerID primitive.ObjectID, basePay float64) error {
	if basePay < 0 {
		return ErrInvalidBasePay
	}
	if err := s.requireTrainer(ctx, trainerID); err != nil {
		return err
	}
	if err := s.users.SetBasePay(ctx, trainerID, basePay); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainerNotFound
		}
		return storageError(err)
	}
	s.log.Info("base pay updated", zap.String(logger.FieldTrainerID, trainerID.Hex()), zap.Float64("base_pay", basePay))
	return nil
}

func (s *scheduleService) requireTrainer(ctx context.Context, trainerID primitive.ObjectID) error {
	user, err := s.users.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainerNotFound
		}
		return storageError(err)
	}
	if !user.IsTrainer() {
		return ErrUserNotTrainer
	}
	return nil
}
