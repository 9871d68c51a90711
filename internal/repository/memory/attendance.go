package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type openKey struct {
	trainerID primitive.ObjectID
	sessionID primitive.ObjectID
}

// AttendanceRepository implements repository.AttendanceRepository. The open
// index plays the role of the partial unique index in MongoDB.
type AttendanceRepository struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]domain.AttendanceRecord
	open    map[openKey]primitive.ObjectID
}

// NewAttendanceRepository creates an empty in-memory attendance store.
func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		records: make(map[primitive.ObjectID]domain.AttendanceRecord),
		open:    make(map[openKey]primitive.ObjectID),
	}
}

// FindOpenRecord returns the record for trainerID and sessionID that has no
// check-out yet.
func (r *AttendanceRepository) FindOpenRecord(_ context.Context, trainerID, sessionID primitive.ObjectID) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.open[openKey{trainerID, sessionID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec := r.records[id]
	return &rec, nil
}

// FindOpenRecordByID returns the record with id if it is still open.
func (r *AttendanceRepository) FindOpenRecordByID(_ context.Context, id primitive.ObjectID) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || !rec.IsOpen() {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

// Insert stores a new open record. It returns repository.ErrConflict when the
// trainer already has an open record for the same session.
func (r *AttendanceRepository) Insert(_ context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	if record.TrainerID == primitive.NilObjectID || record.SessionID == primitive.NilObjectID || record.CheckInInstant.IsZero() {
		return nil, repository.ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Only one open record per trainer and session
	key := openKey{record.TrainerID, record.SessionID}
	if _, exists := r.open[key]; exists {
		return nil, repository.ErrConflict
	}

	// Fresh records are always open
	rec := *record
	rec.ID = primitive.NewObjectID()
	rec.CheckOutInstant = nil
	rec.CheckOutStatus = domain.CheckOutNotYet
	rec.SessionDurationMinutes = nil
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	r.records[rec.ID] = rec
	r.open[key] = rec.ID
	return &rec, nil
}

// UpdateCheckout closes an open record. A record that is missing or already
// closed yields repository.ErrConflict, so only one concurrent check-out wins.
func (r *AttendanceRepository) UpdateCheckout(_ context.Context, id primitive.ObjectID, checkOut time.Time, status domain.CheckOutStatus, durationMinutes int) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || !rec.IsOpen() {
		return nil, repository.ErrConflict
	}
	rec.CheckOutInstant = &checkOut
	rec.CheckOutStatus = status
	rec.SessionDurationMinutes = &durationMinutes
	rec.UpdatedAt = time.Now().UTC()

	r.records[id] = rec
	// Closed records leave the open index so the trainer can check in again
	delete(r.open, openKey{rec.TrainerID, rec.SessionID})
	return &rec, nil
}

// ListByTrainer returns records checked in within [from, to), oldest first.
func (r *AttendanceRepository) ListByTrainer(_ context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.AttendanceRecord{}
	for _, rec := range r.records {
		if rec.TrainerID == trainerID && !rec.CheckInInstant.Before(from) && rec.CheckInInstant.Before(to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInInstant.Before(out[j].CheckInInstant) })
	return out, nil
}

// Count returns the number of stored records, open or closed.
func (r *AttendanceRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
