package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/logger"
	"alcyxob/gym-attendance/internal/repository"
	"alcyxob/gym-attendance/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrReportsDisabled = errors.New("report storage is not configured")

const payrollContentType = "text/csv"

// PayrollExport is the result of exporting a payroll report.
type PayrollExport struct {
	Report      *domain.PayrollReport
	Summary     *domain.PayrollSummary
	DownloadURL string
}

// --- Service Interface ---
type PayrollService interface {
	Summarize(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (*domain.PayrollSummary, error)
	Export(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (*PayrollExport, error)
}

// --- Service Implementation ---

type payrollService struct {
	records   repository.AttendanceRepository
	reports   repository.PayrollReportRepository
	files     storage.FileStorage // nil disables Export
	clock     attendance.Clock
	urlExpiry time.Duration
	log       *zap.Logger
}

// NewPayrollService creates a new instance of payrollService.
func NewPayrollService(
	records repository.AttendanceRepository,
	reports repository.PayrollReportRepository,
	files storage.FileStorage,
	clock attendance.Clock,
	urlExpiry time.Duration,
	log *zap.Logger,
) PayrollService {
	return &payrollService{
		records:   records,
		reports:   reports,
		files:     files,
		clock:     clock,
		urlExpiry: urlExpiry,
		log:       log,
	}
}

// Summarize totals the trainer's records checked in within [from, to).
func (s *payrollService) Summarize(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (*domain.PayrollSummary, error) {
	summary, _, err := s.collect(ctx, trainerID, from, to)
	return summary, err
}

func (s *payrollService) collect(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (*domain.PayrollSummary, []domain.AttendanceRecord, error) {
	if !from.Before(to) {
		return nil, nil, ErrInvalidPeriod
	}
	records, err := s.records.ListByTrainer(ctx, trainerID, from, to)
	if err != nil {
		return nil, nil, storageError(err)
	}
	return Summarize(trainerID, from, to, records), records, nil
}

// Summarize aggregates records into a PayrollSummary.
func Summarize(trainerID primitive.ObjectID, from, to time.Time, records []domain.AttendanceRecord) *domain.PayrollSummary {
	summary := &domain.PayrollSummary{TrainerID: trainerID, From: from, To: to}
	for _, r := range records {
		summary.Sessions++
		if r.CheckInStatus == domain.CheckInLate {
			summary.LateCheckIns++
		}
		if r.IsOpen() {
			summary.OpenRecords++
		}
		summary.TotalMinutesLate += r.MinutesLateAtCheckIn
		summary.TotalBasePay += r.BasePay
		summary.TotalPenalty += r.PenaltyAmount
		summary.TotalNetPay += r.NetPay
	}
	return summary
}

// Export renders the period as CSV, uploads it and returns a download link.
func (s *payrollService) Export(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (*PayrollExport, error) {
	if s.files == nil {
		return nil, ErrReportsDisabled
	}

	// 1. Gather
	summary, records, err := s.collect(ctx, trainerID, from, to)
	if err != nil {
		return nil, err
	}

	// 2. Render
	body, err := s.renderCSV(summary, records)
	if err != nil {
		return nil, err
	}

	// 3. Upload
	fileName := fmt.Sprintf("payroll_%s_%s.csv", from.In(s.clock.Location).Format("20060102"), to.In(s.clock.Location).Format("20060102"))
	key := fmt.Sprintf("payroll/%s/%s/%s", trainerID.Hex(), uuid.NewString(), fileName)
	if err := s.files.PutObject(ctx, key, payrollContentType, bytes.NewReader(body), int64(len(body))); err != nil {
		return nil, fmt.Errorf("%w: upload payroll report: %w", ErrStorage, err)
	}

	// 4. Record metadata, dropping the object if that fails
	report := &domain.PayrollReport{
		TrainerID:   trainerID,
		From:        from,
		To:          to,
		S3ObjectKey: key,
		FileName:    fileName,
		ContentType: payrollContentType,
		Size:        int64(len(body)),
	}
	id, err := s.reports.Create(ctx, report)
	if err != nil {
		if delErr := s.files.DeleteObject(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned report", zap.String("key", key), zap.Error(delErr))
		}
		return nil, storageError(err)
	}
	report.ID = id

	// 5. Link
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign payroll report: %w", ErrStorage, err)
	}

	s.log.Info("payroll report exported",
		zap.String(logger.FieldTrainerID, trainerID.Hex()),
		zap.String("report_id", id.Hex()),
		zap.Int("records", len(records)))

	return &PayrollExport{Report: report, Summary: summary, DownloadURL: url}, nil
}

var payrollCSVHeader = []string{
	"record_id", "session_id", "check_in", "check_out", "check_in_status", "check_out_status",
	"minutes_late", "duration_minutes", "base_pay", "penalty", "net_pay",
}

func (s *payrollService) renderCSV(summary *domain.PayrollSummary, records []domain.AttendanceRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := make([][]string, 0, len(records)+2)
	rows = append(rows, payrollCSVHeader)
	for _, r := range records {
		checkOut, duration := "", ""
		if r.CheckOutInstant != nil {
			checkOut = r.CheckOutInstant.In(s.clock.Location).Format(time.RFC3339)
		}
		if r.SessionDurationMinutes != nil {
			duration = strconv.Itoa(*r.SessionDurationMinutes)
		}
		rows = append(rows, []string{
			r.ID.Hex(),
			r.SessionID.Hex(),
			r.CheckInInstant.In(s.clock.Location).Format(time.RFC3339),
			checkOut,
			string(r.CheckInStatus),
			string(r.CheckOutStatus),
			strconv.Itoa(r.MinutesLateAtCheckIn),
			duration,
			formatMoney(r.BasePay),
			formatMoney(r.PenaltyAmount),
			formatMoney(r.NetPay),
		})
	}
	// Totals sit under the columns they sum; the other cells stay empty.
	total := make([]string, len(payrollCSVHeader))
	total[0] = "TOTAL"
	total[6] = strconv.Itoa(summary.TotalMinutesLate)
	total[8] = formatMoney(summary.TotalBasePay)
	total[9] = formatMoney(summary.TotalPenalty)
	total[10] = formatMoney(summary.TotalNetPay)
	rows = append(rows, total)

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
