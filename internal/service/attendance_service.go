package service

import (
	"context"
	"errors"
	"fmt"
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
	ErrInvalidTimeFormat  = attendance.ErrInvalidTimeFormat
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotAssigned        = errors.New("trainer is not assigned to this session")
	ErrAlreadyCheckedIn   = errors.New("trainer is already checked in to this session")
	ErrTooEarly           = errors.New("too early to check in")
	ErrRecordNotFound     = errors.New("no open attendance record found")
	ErrNotOwner           = errors.New("attendance record belongs to another trainer")
	ErrTooEarlyToCheckOut = errors.New("too early to check out")
	ErrConflict           = errors.New("attendance record was changed by a concurrent request")
	ErrTrainerNotFound    = errors.New("trainer not found")
	ErrInvalidSelector    = errors.New("record ID or session ID is required")
	ErrStorage            = errors.New("attendance storage unavailable")
)

// TimingError is returned when an action is attempted before its window opens.
type TimingError struct {
	Kind             error // ErrTooEarly or ErrTooEarlyToCheckOut
	MinutesRemaining int
}

func (e *TimingError) Error() string {
	return fmt.Sprintf("%v: %d minute(s) remaining", e.Kind, e.MinutesRemaining)
}

func (e *TimingError) Unwrap() error {
	return e.Kind
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// CheckOutSelector picks the open record to close: RecordID when set,
// otherwise the caller's open record for SessionID.
type CheckOutSelector struct {
	RecordID  primitive.ObjectID
	SessionID primitive.ObjectID
}

// LateNotifier is told about every late check-in after it is stored.
type LateNotifier interface {
	NotifyLate(ctx context.Context, rec *domain.AttendanceRecord) error
}

// --- Service Interface ---
type AttendanceService interface {
	CheckIn(ctx context.Context, trainerID, sessionID primitive.ObjectID, now time.Time) (*domain.AttendanceRecord, error)
	CheckOut(ctx context.Context, trainerID primitive.ObjectID, selector CheckOutSelector, now time.Time) (*domain.AttendanceRecord, error)
	ListRecords(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.AttendanceRecord, error)
}

// --- Service Implementation ---

// attendanceService runs the check-in/check-out state machine:
// no record -> checked in -> checked out. It keeps no state of its own.
type attendanceService struct {
	records  repository.AttendanceRepository
	sessions repository.SessionLookup
	trainers repository.TrainerLookup
	notifier LateNotifier
	clock    attendance.Clock
	log      *zap.Logger
}

// NewAttendanceService creates a new instance of attendanceService.
func NewAttendanceService(
	records repository.AttendanceRepository,
	sessions repository.SessionLookup,
	trainers repository.TrainerLookup,
	notifier LateNotifier,
	clock attendance.Clock,
	log *zap.Logger,
) AttendanceService {
	return &attendanceService{
		records:  records,
		sessions: sessions,
		trainers: trainers,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// CheckIn opens an attendance record for the trainer's session.
func (s *attendanceService) CheckIn(ctx context.Context, trainerID, sessionID primitive.ObjectID, now time.Time) (*domain.AttendanceRecord, error) {
	// 1. Session must exist
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// 2. Only the assigned trainer may check in
	if session.TrainerID != trainerID {
		return nil, ErrNotAssigned
	}

	// 3. No open record for this trainer and session
	_, err = s.records.FindOpenRecord(ctx, trainerID, sessionID)
	if err == nil {
		return nil, ErrAlreadyCheckedIn
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError(err)
	}

	// 4. Check-in window opens 30 minutes before the start
	start, err := s.clock.ToInstant(session.Date, session.StartTime)
	if err != nil {
		return nil, err
	}
	if earliest := attendance.EarliestCheckIn(start); now.Before(earliest) {
		return nil, &TimingError{Kind: ErrTooEarly, MinutesRemaining: attendance.MinutesUntil(now, earliest)}
	}

	// 5. Classify and price the check-in
	punctuality := attendance.EvaluateCheckIn(now, start)

	basePay, err := s.trainers.GetBasePay(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, storageError(err)
	}
	pay := attendance.ComputePenalty(punctuality.MinutesLate, basePay)

	// 6. Persist. The store rejects a second open record for the pair.
	record, err := s.records.Insert(ctx, &domain.AttendanceRecord{
		TrainerID:            trainerID,
		SessionID:            sessionID,
		CheckInInstant:       now.UTC(),
		CheckInStatus:        punctuality.Status,
		CheckOutStatus:       domain.CheckOutNotYet,
		MinutesLateAtCheckIn: punctuality.MinutesLate,
		BasePay:              pay.BasePay,
		PenaltyAmount:        pay.PenaltyAmount,
		NetPay:               pay.NetPay,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, storageError(err)
	}

	s.log.Info("trainer checked in",
		zap.String(logger.FieldTrainerID, trainerID.Hex()),
		zap.String(logger.FieldSessionID, sessionID.Hex()),
		zap.String(logger.FieldRecordID, record.ID.Hex()),
		zap.String("status", string(record.CheckInStatus)),
		zap.Int("minutes_late", record.MinutesLateAtCheckIn),
		zap.Float64("penalty", record.PenaltyAmount))

	if record.CheckInStatus == domain.CheckInLate {
		// The record is already durable; a lost notice must not undo the check-in.
		if err := s.notifier.NotifyLate(ctx, record); err != nil {
			s.log.Warn("failed to enqueue late notice",
				zap.String(logger.FieldRecordID, record.ID.Hex()), zap.Error(err))
		}
	}

	return record, nil
}

// CheckOut closes the selected open record once the session has ended.
func (s *attendanceService) CheckOut(ctx context.Context, trainerID primitive.ObjectID, selector CheckOutSelector, now time.Time) (*domain.AttendanceRecord, error) {
	// 1. Find the open record
	var (
		record *domain.AttendanceRecord
		err    error
	)
	switch {
	case selector.RecordID != primitive.NilObjectID:
		record, err = s.records.FindOpenRecordByID(ctx, selector.RecordID)
	case selector.SessionID != primitive.NilObjectID:
		record, err = s.records.FindOpenRecord(ctx, trainerID, selector.SessionID)
	default:
		return nil, ErrInvalidSelector
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, storageError(err)
	}

	// 2. Ownership
	if record.TrainerID != trainerID {
		return nil, ErrNotOwner
	}

	// 3. Session must still resolve
	session, err := s.getSession(ctx, record.SessionID)
	if err != nil {
		return nil, err
	}

	// 4. Not before the scheduled end
	end, err := s.clock.ToInstant(session.Date, session.EndTime)
	if err != nil {
		return nil, err
	}
	if now.Before(end) {
		return nil, &TimingError{Kind: ErrTooEarlyToCheckOut, MinutesRemaining: attendance.MinutesUntil(now, end)}
	}

	// 5. Conditional update: only one concurrent checkout can win.
	// Checkout is never penalised, however late it happens.
	duration := attendance.MinutesBetween(now, record.CheckInInstant)
	updated, err := s.records.UpdateCheckout(ctx, record.ID, now.UTC(), domain.CheckOutOnTime, duration)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, storageError(err)
	}

	s.log.Info("trainer checked out",
		zap.String(logger.FieldTrainerID, trainerID.Hex()),
		zap.String(logger.FieldSessionID, updated.SessionID.Hex()),
		zap.String(logger.FieldRecordID, updated.ID.Hex()),
		zap.Int("duration_minutes", duration))

	return updated, nil
}

// ListRecords returns the trainer's records checked in within [from, to).
func (s *attendanceService) ListRecords(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	if !from.Before(to) {
		return nil, ErrInvalidPeriod
	}
	records, err := s.records.ListByTrainer(ctx, trainerID, from, to)
	if err != nil {
		return nil, storageError(err)
	}
	return records, nil
}

func (s *attendanceService) getSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, storageError(err)
	}
	return session, nil
}
