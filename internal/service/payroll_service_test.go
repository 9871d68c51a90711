package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository"
	"alcyxob/gym-attendance/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockFileStorage struct {
	mock.Mock
	uploaded string
}

func (m *mockFileStorage) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	data, _ := io.ReadAll(body)
	m.uploaded = string(data)
	args := m.Called(ctx, key, contentType, size)
	return args.Error(0)
}

func (m *mockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// failingReports rejects every Create.
type failingReports struct{ repository.PayrollReportRepository }

func (failingReports) Create(context.Context, *domain.PayrollReport) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errors.New("mongo unavailable")
}

// seedPayroll checks the fixture trainer in on three sessions: on time and
// closed, 15 minutes late and closed, capped and still open.
func seedPayroll(t *testing.T, f *attendanceFixture) {
	t.Helper()
	ctx := context.Background()
	f.expectLateNotice()

	rec, err := f.svc.CheckIn(ctx, f.trainer, f.session, at(8, 40, 0))
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, f.trainer, CheckOutSelector{RecordID: rec.ID}, at(10, 0, 0))
	require.NoError(t, err)

	for _, start := range []string{"11:00", "14:00"} {
		id, err := f.sessions.Create(ctx, &domain.Session{TrainerID: f.trainer, Date: at(0, 0, 0), StartTime: start, EndTime: "16:00"})
		require.NoError(t, err)
		checkIn := at(11, 0, 0)
		if start == "14:00" {
			checkIn = at(15, 0, 0)
		}
		rec, err := f.svc.CheckIn(ctx, f.trainer, id, checkIn)
		require.NoError(t, err)
		if start == "11:00" {
			_, err = f.svc.CheckOut(ctx, f.trainer, CheckOutSelector{RecordID: rec.ID}, at(16, 0, 0))
			require.NoError(t, err)
		}
	}
}

func TestPayrollSummarize(t *testing.T) {
	f := newAttendanceFixture(t)
	seedPayroll(t, f)
	svc := NewPayrollService(f.records, memory.NewPayrollReportRepository(), nil, attendance.NewClock(gymZone), time.Minute, zap.NewNop())

	summary, err := svc.Summarize(context.Background(), f.trainer, at(0, 0, 0), at(23, 59, 0))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Sessions)
	assert.Equal(t, 2, summary.LateCheckIns)
	assert.Equal(t, 1, summary.OpenRecords)
	assert.Equal(t, 15+75, summary.TotalMinutesLate)
	assert.InDelta(t, 300, summary.TotalBasePay, 1e-9)
	assert.InDelta(t, 15+50, summary.TotalPenalty, 1e-9)
	assert.InDelta(t, 300-65, summary.TotalNetPay, 1e-9)

	empty, err := svc.Summarize(context.Background(), primitive.NewObjectID(), at(0, 0, 0), at(23, 59, 0))
	require.NoError(t, err)
	assert.Zero(t, empty.Sessions)

	_, err = svc.Summarize(context.Background(), f.trainer, at(10, 0, 0), at(9, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestPayrollExport(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	seedPayroll(t, f)

	files := &mockFileStorage{}
	files.On("PutObject", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "payroll/"+f.trainer.Hex()+"/") && strings.HasSuffix(key, "/payroll_20240510_20240511.csv")
	}), "text/csv", mock.AnythingOfType("int64")).Return(nil).Once()
	files.On("GeneratePresignedDownloadURL", mock.Anything, mock.AnythingOfType("string"), 5*time.Minute).
		Return("https://s3.test/report.csv", nil).Once()

	reports := memory.NewPayrollReportRepository()
	svc := NewPayrollService(f.records, reports, files, attendance.NewClock(gymZone), 5*time.Minute, zap.NewNop())

	export, err := svc.Export(ctx, f.trainer, at(0, 0, 0), time.Date(2024, time.May, 11, 0, 0, 0, 0, gymZone))
	require.NoError(t, err)
	files.AssertExpectations(t)

	assert.Equal(t, "https://s3.test/report.csv", export.DownloadURL)
	assert.Equal(t, 3, export.Summary.Sessions)
	assert.Equal(t, int64(len(files.uploaded)), export.Report.Size)

	stored, err := reports.GetByID(ctx, export.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, export.Report.S3ObjectKey, stored.S3ObjectKey)

	rows, err := csv.NewReader(strings.NewReader(files.uploaded)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5, "header, three records, totals")
	assert.Equal(t, payrollCSVHeader, rows[0])
	assert.Equal(t, "ON_TIME", rows[1][4])
	assert.Equal(t, "80", rows[1][7])
	assert.Equal(t, "LATE", rows[3][4])
	assert.Equal(t, "NOT_YET", rows[3][5])
	assert.Empty(t, rows[3][3])
	assert.Equal(t, "50.00", rows[3][9])
	total := rows[4]
	require.Len(t, total, len(payrollCSVHeader))
	assert.Equal(t, "TOTAL", total[0])
	for _, col := range []int{1, 2, 3, 4, 5, 7} {
		assert.Empty(t, total[col], "column %s", payrollCSVHeader[col])
	}
	assert.Equal(t, "90", total[6])
	assert.Equal(t, "235.00", total[10])
}

func TestPayrollExportCleansUpOnMetadataFailure(t *testing.T) {
	f := newAttendanceFixture(t)
	files := &mockFileStorage{}
	files.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	files.On("DeleteObject", mock.Anything, mock.Anything).Return(nil).Once()

	svc := NewPayrollService(f.records, failingReports{}, files, attendance.NewClock(gymZone), time.Minute, zap.NewNop())
	_, err := svc.Export(context.Background(), f.trainer, at(0, 0, 0), at(23, 0, 0))
	assert.ErrorIs(t, err, ErrStorage)
	files.AssertExpectations(t)
	files.AssertNotCalled(t, "GeneratePresignedDownloadURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestPayrollExportDisabled(t *testing.T) {
	f := newAttendanceFixture(t)
	svc := NewPayrollService(f.records, memory.NewPayrollReportRepository(), nil, attendance.NewClock(gymZone), time.Minute, zap.NewNop())
	_, err := svc.Export(context.Background(), f.trainer, at(0, 0, 0), at(23, 0, 0))
	assert.ErrorIs(t, err, ErrReportsDisabled)
}
