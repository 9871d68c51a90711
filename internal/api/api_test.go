package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/jobs"
	"alcyxob/gym-attendance/internal/repository/memory"
	"alcyxob/gym-attendance/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "api-test-secret"

var testZone = time.FixedZone("ICT", 7*60*60)

type testServer struct {
	router       *gin.Engine
	now          time.Time
	trainerID    string
	trainerToken string
	adminToken   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	log := zap.NewNop()
	clock := attendance.NewClock(testZone)
	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	records := memory.NewAttendanceRepository()

	authService := service.NewAuthService(users, testJWTSecret, time.Hour, true, log)
	services := Services{
		Auth:          authService,
		Attendance:    service.NewAttendanceService(records, sessions, users, jobs.NoopNotifier{}, clock, log),
		Schedule:      service.NewScheduleService(users, sessions, clock, log),
		Payroll:       service.NewPayrollService(records, memory.NewPayrollReportRepository(), nil, clock, time.Minute, log),
		Notifications: service.NewNotificationService(memory.NewNotificationRepository()),
	}

	ts := &testServer{router: gin.New()}
	ts.router.Use(RequestLogger(log))
	SetupRoutes(ts.router, testJWTSecret, clock, func() time.Time { return ts.now }, services, log)

	ctx := context.Background()
	trainer, err := authService.Register(ctx, "Trainer", "trainer@gym.test", "password1", domain.RoleTrainer)
	require.NoError(t, err)
	ts.trainerID = trainer.ID.Hex()
	ts.trainerToken, _, err = authService.Login(ctx, "trainer@gym.test", "password1")
	require.NoError(t, err)
	_, err = authService.Register(ctx, "Admin", "admin@gym.test", "password1", domain.RoleAdmin)
	require.NoError(t, err)
	ts.adminToken, _, err = authService.Login(ctx, "admin@gym.test", "password1")
	require.NoError(t, err)

	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) scheduleSession(t *testing.T) string {
	t.Helper()
	w := ts.do(t, http.MethodPut, "/api/v1/admin/trainers/"+ts.trainerID+"/base-pay", ts.adminToken, gin.H{"basePay": 100})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/v1/admin/sessions", ts.adminToken, gin.H{
		"trainerId": ts.trainerID, "title": "Morning HIIT", "date": "2024-05-10", "startTime": "09:00", "endTime": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[SessionResponse](t, w)
	assert.Equal(t, "2024-05-10", session.Date)
	return session.ID
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/trainer/attendance?from=2024-05-01&to=2024-05-31", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = ts.do(t, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/me", ts.trainerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[UserResponse](t, w)
	assert.Equal(t, ts.trainerID, me.ID)
	assert.Equal(t, domain.RoleTrainer, me.Role)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "trainer@gym.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Dup", "email": "trainer@gym.test", "password": "password1", "role": "trainer"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRoleSeparation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-in", ts.adminToken, gin.H{"sessionId": ts.trainerID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/admin/sessions", ts.trainerToken, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer(t)

	for name, body := range map[string]gin.H{
		"bad start":   {"trainerId": ts.trainerID, "date": "2024-05-10", "startTime": "9:00", "endTime": "10:00"},
		"bad end":     {"trainerId": ts.trainerID, "date": "2024-05-10", "startTime": "09:00", "endTime": "10:60"},
		"bad date":    {"trainerId": ts.trainerID, "date": "10/05/2024", "startTime": "09:00", "endTime": "10:00"},
		"bad trainer": {"trainerId": "nope", "date": "2024-05-10", "startTime": "09:00", "endTime": "10:00"},
		"reversed":    {"trainerId": ts.trainerID, "date": "2024-05-10", "startTime": "10:00", "endTime": "09:00"},
	} {
		t.Run(name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/admin/sessions", ts.adminToken, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestAttendanceFlow(t *testing.T) {
	ts := newTestServer(t)
	sessionID := ts.scheduleSession(t)

	// Too early: the window opens at 08:30.
	ts.now = time.Date(2024, time.May, 10, 8, 20, 0, 0, testZone)
	w := ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-in", ts.trainerToken, gin.H{"sessionId": sessionID})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	tooEarly := decode[map[string]any](t, w)
	assert.EqualValues(t, 10, tooEarly["minutesRemaining"])

	// Five minutes past the 08:45 deadline.
	ts.now = time.Date(2024, time.May, 10, 8, 50, 0, 0, testZone)
	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-in", ts.trainerToken, gin.H{"sessionId": sessionID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[AttendanceRecordResponse](t, w)
	assert.Equal(t, domain.CheckInLate, rec.CheckInStatus)
	assert.Equal(t, domain.CheckOutNotYet, rec.CheckOutStatus)
	assert.Equal(t, 5, rec.MinutesLateAtCheckIn)
	assert.InDelta(t, 5, rec.PenaltyAmount, 1e-9)
	assert.InDelta(t, 95, rec.NetPay, 1e-9)

	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-in", ts.trainerToken, gin.H{"sessionId": sessionID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-out", ts.trainerToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.now = time.Date(2024, time.May, 10, 9, 30, 0, 0, testZone)
	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-out", ts.trainerToken, gin.H{"sessionId": sessionID})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.EqualValues(t, 30, decode[map[string]any](t, w)["minutesRemaining"])

	ts.now = time.Date(2024, time.May, 10, 10, 5, 0, 0, testZone)
	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-out", ts.trainerToken, gin.H{"recordId": rec.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	closed := decode[AttendanceRecordResponse](t, w)
	assert.Equal(t, domain.CheckOutOnTime, closed.CheckOutStatus)
	require.NotNil(t, closed.SessionDurationMinutes)
	assert.Equal(t, 75, *closed.SessionDurationMinutes)

	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-out", ts.trainerToken, gin.H{"recordId": rec.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/trainer/attendance?from=2024-05-10&to=2024-05-10", ts.trainerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]AttendanceRecordResponse](t, w), 1)

	w = ts.do(t, http.MethodGet, "/api/v1/trainer/sessions?from=2024-05-10&to=2024-05-10", ts.trainerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]SessionResponse](t, w), 1)

	w = ts.do(t, http.MethodGet, "/api/v1/trainer/payroll?from=2024-05-01&to=2024-05-31", ts.trainerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[domain.PayrollSummary](t, w)
	assert.Equal(t, 1, summary.LateCheckIns)
	assert.InDelta(t, 95, summary.TotalNetPay, 1e-9)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/trainers/"+ts.trainerID+"/payroll?from=2024-05-01&to=2024-05-31", ts.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 5, decode[domain.PayrollSummary](t, w).TotalPenalty, 1e-9)

	w = ts.do(t, http.MethodGet, "/api/v1/trainer/notifications", ts.trainerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]NotificationResponse](t, w))
}

func TestCheckInErrors(t *testing.T) {
	ts := newTestServer(t)
	sessionID := ts.scheduleSession(t)
	ts.now = time.Date(2024, time.May, 10, 8, 40, 0, 0, testZone)

	w := ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-in", ts.trainerToken, gin.H{"sessionId": "xyz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-in", ts.trainerToken, gin.H{"sessionId": ts.trainerID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Other", "email": "other@gym.test", "password": "password1", "role": "trainer"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "other@gym.test", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	other := decode[LoginResponse](t, w)

	w = ts.do(t, http.MethodPost, "/api/v1/trainer/attendance/check-in", other.Token, gin.H{"sessionId": sessionID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPeriodValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/trainer/attendance?from=2024-05-10", ts.trainerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/trainer/attendance?from=2024-05-10&to=2024-05-01", ts.trainerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/trainer/payroll/export", ts.trainerToken, gin.H{"from": "2024-05-01", "to": "2024-05-31"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
