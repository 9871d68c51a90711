// Package jobs holds the asynq background tasks of the attendance service.
package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"alcyxob/gym-attendance/internal/domain"

	"github.com/hibiken/asynq"
)

const TypeLateNotice = "attendance:late_notice"

// LateNoticePayload describes a late check-in and its penalty.
type LateNoticePayload struct {
	RecordID      string  `json:"recordId"`
	TrainerID     string  `json:"trainerId"`
	SessionID     string  `json:"sessionId"`
	MinutesLate   int     `json:"minutesLate"`
	BasePay       float64 `json:"basePay"`
	PenaltyAmount float64 `json:"penaltyAmount"`
	NetPay        float64 `json:"netPay"`
}

func (p *LateNoticePayload) Normalize() {
	p.RecordID = strings.TrimSpace(p.RecordID)
	p.TrainerID = strings.TrimSpace(p.TrainerID)
	p.SessionID = strings.TrimSpace(p.SessionID)
}

// Message is the notice shown to the trainer.
func (p LateNoticePayload) Message() string {
	return fmt.Sprintf("Checked in %d minute(s) late: penalty %.2f deducted, session pay %.2f of %.2f.",
		p.MinutesLate, p.PenaltyAmount, p.NetPay, p.BasePay)
}

func NewLateNoticeTask(rec *domain.AttendanceRecord) (*asynq.Task, error) {
	payload := LateNoticePayload{
		RecordID:      rec.ID.Hex(),
		TrainerID:     rec.TrainerID.Hex(),
		SessionID:     rec.SessionID.Hex(),
		MinutesLate:   rec.MinutesLateAtCheckIn,
		BasePay:       rec.BasePay,
		PenaltyAmount: rec.PenaltyAmount,
		NetPay:        rec.NetPay,
	}
	payload.Normalize()

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLateNotice, b), nil
}

func LateNoticeTaskID(recordID string) string {
	return "late-notice-" + strings.TrimSpace(recordID)
}
