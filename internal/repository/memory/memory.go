// Package memory provides in-process repository implementations with the
// same atomicity guarantees as the MongoDB ones. Used by tests and by the
// "memory" database driver for local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository implements repository.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
}

// NewUserRepository creates an empty in-memory user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]domain.User)}
}

// Create stores a new user and assigns its ID and timestamps.
// Emails are unique regardless of case.
func (r *UserRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate email
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

// GetByEmail finds a user by email, ignoring case.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetByID finds a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// GetBasePay returns the per-session pay of a trainer. Non-trainers are
// reported as repository.ErrNotFound.
func (r *UserRepository) GetBasePay(_ context.Context, trainerID primitive.ObjectID) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[trainerID]
	if !ok || !u.IsTrainer() {
		return 0, repository.ErrNotFound
	}
	return u.BasePay, nil
}

// SetBasePay updates a trainer's per-session pay.
func (r *UserRepository) SetBasePay(_ context.Context, trainerID primitive.ObjectID, basePay float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[trainerID]
	if !ok || !u.IsTrainer() {
		return repository.ErrNotFound
	}
	u.BasePay = basePay
	u.UpdatedAt = time.Now().UTC()
	r.users[trainerID] = u
	return nil
}

// SessionRepository implements repository.SessionRepository.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[primitive.ObjectID]domain.Session
}

// NewSessionRepository creates an empty in-memory session store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[primitive.ObjectID]domain.Session)}
}

// Create stores a new session and assigns its ID and timestamps.
func (r *SessionRepository) Create(_ context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.TrainerID == primitive.NilObjectID || session.Date.IsZero() || session.StartTime == "" || session.EndTime == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.sessions[session.ID] = *session
	return session.ID, nil
}

// GetByID finds a session by ID.
func (r *SessionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

// ListByTrainer returns the trainer's sessions whose date falls in [from, to),
// ordered by date then start time.
func (r *SessionRepository) ListByTrainer(_ context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Session{}
	for _, s := range r.sessions {
		if s.TrainerID == trainerID && !s.Date.Before(from) && s.Date.Before(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// Delete removes a session. Only used to simulate administrative deletion.
func (r *SessionRepository) Delete(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
