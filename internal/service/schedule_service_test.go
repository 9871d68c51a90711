package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newScheduleFixture(t *testing.T) (ScheduleService, *memory.UserRepository, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository()

	trainer, err := users.Create(ctx, &domain.User{Name: "Minh", Email: "minh@gym.test", PasswordHash: "x", Role: domain.RoleTrainer})
	require.NoError(t, err)
	admin, err := users.Create(ctx, &domain.User{Name: "Boss", Email: "boss@gym.test", PasswordHash: "x", Role: domain.RoleAdmin})
	require.NoError(t, err)

	svc := NewScheduleService(users, memory.NewSessionRepository(), attendance.NewClock(gymZone), zap.NewNop())
	return svc, users, trainer, admin
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _, trainer, admin := newScheduleFixture(t)
	day := time.Date(2024, time.May, 10, 15, 30, 0, 0, gymZone)

	session, err := svc.CreateSession(ctx, NewSessionInput{TrainerID: trainer, Title: "Spin", Date: day, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	assert.False(t, session.ID.IsZero())
	assert.True(t, session.Date.Equal(time.Date(2024, time.May, 10, 0, 0, 0, 0, gymZone)), "date is stored as local midnight")

	tests := []struct {
		name string
		in   NewSessionInput
		want error
	}{
		{"missing fields", NewSessionInput{TrainerID: trainer, Date: day}, ErrSessionFieldsEmpty},
		{"bad start", NewSessionInput{TrainerID: trainer, Date: day, StartTime: "24:00", EndTime: "10:00"}, ErrInvalidTimeFormat},
		{"bad end", NewSessionInput{TrainerID: trainer, Date: day, StartTime: "09:00", EndTime: "10:0"}, ErrInvalidTimeFormat},
		{"end before start", NewSessionInput{TrainerID: trainer, Date: day, StartTime: "10:00", EndTime: "09:00"}, ErrSessionEndsEarly},
		{"zero length", NewSessionInput{TrainerID: trainer, Date: day, StartTime: "10:00", EndTime: "10:00"}, ErrSessionEndsEarly},
		{"assigned to admin", NewSessionInput{TrainerID: admin, Date: day, StartTime: "09:00", EndTime: "10:00"}, ErrUserNotTrainer},
		{"unknown trainer", NewSessionInput{TrainerID: primitive.NewObjectID(), Date: day, StartTime: "09:00", EndTime: "10:00"}, ErrTrainerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSession(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListTrainerSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, trainer, _ := newScheduleFixture(t)

	for _, d := range []int{12, 10, 11} {
		_, err := svc.CreateSession(ctx, NewSessionInput{
			TrainerID: trainer, Date: time.Date(2024, time.May, d, 0, 0, 0, 0, gymZone), StartTime: "09:00", EndTime: "10:00",
		})
		require.NoError(t, err)
	}

	from := time.Date(2024, time.May, 10, 0, 0, 0, 0, gymZone)
	sessions, err := svc.ListTrainerSessions(ctx, trainer, from, from.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 10, sessions[0].Date.In(gymZone).Day())
	assert.Equal(t, 11, sessions[1].Date.In(gymZone).Day())

	_, err = svc.ListTrainerSessions(ctx, trainer, from, from)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSetBasePay(t *testing.T) {
	ctx := context.Background()
	svc, users, trainer, admin := newScheduleFixture(t)

	require.NoError(t, svc.SetBasePay(ctx, trainer, 250))
	pay, err := users.GetBasePay(ctx, trainer)
	require.NoError(t, err)
	assert.Equal(t, 250.0, pay)

	assert.ErrorIs(t, svc.SetBasePay(ctx, trainer, -1), ErrInvalidBasePay)
	assert.ErrorIs(t, svc.SetBasePay(ctx, admin, 10), ErrUserNotTrainer)
	assert.ErrorIs(t, svc.SetBasePay(ctx, primitive.NewObjectID(), 10), ErrTrainerNotFound)
}
