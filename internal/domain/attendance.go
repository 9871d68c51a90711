package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckInStatus classifies a check-in against the punctuality deadline.
type CheckInStatus string

const (
	CheckInOnTime CheckInStatus = "ON_TIME"
	CheckInLate   CheckInStatus = "LATE"
)

// CheckOutStatus tracks whether the record has been closed.
type CheckOutStatus string

const (
	CheckOutOnTime CheckOutStatus = "ON_TIME"
	CheckOutNotYet CheckOutStatus = "NOT_YET" // Record is still open
)

// AttendanceRecord is one trainer check-in for one session. All check-in and
// pay fields are written once at creation; only the check-out fields change,
// exactly once, when the trainer checks out.
type AttendanceRecord struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID              primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	SessionID              primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	CheckInInstant         time.Time          `bson:"checkInInstant" json:"checkInInstant"`
	CheckOutInstant        *time.Time         `bson:"checkOutInstant,omitempty" json:"checkOutInstant,omitempty"`
	CheckInStatus          CheckInStatus      `bson:"checkInStatus" json:"checkInStatus"`
	CheckOutStatus         CheckOutStatus     `bson:"checkOutStatus" json:"checkOutStatus"`
	MinutesLateAtCheckIn   int                `bson:"minutesLateAtCheckIn" json:"minutesLateAtCheckIn"`
	SessionDurationMinutes *int               `bson:"sessionDurationMinutes,omitempty" json:"sessionDurationMinutes,omitempty"`
	BasePay                float64            `bson:"basePay" json:"basePay"`
	PenaltyAmount          float64            `bson:"penaltyAmount" json:"penaltyAmount"`
	NetPay                 float64            `bson:"netPay" json:"netPay"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsOpen reports whether the trainer has not checked out yet.
func (r *AttendanceRecord) IsOpen() bool {
	return r.CheckOutInstant == nil
}

// PayrollSummary aggregates a trainer's attendance records over a period.
type PayrollSummary struct {
	TrainerID        primitive.ObjectID `json:"trainerId"`
	From             time.Time          `json:"from"`
	To               time.Time          `json:"to"`
	Sessions         int                `json:"sessions"`
	LateCheckIns     int                `json:"lateCheckIns"`
	TotalMinutesLate int                `json:"totalMinutesLate"`
	OpenRecords      int                `json:"openRecords"` // Checked in, not yet checked out
	TotalBasePay     float64            `json:"totalBasePay"`
	TotalPenalty     float64            `json:"totalPenalty"`
	TotalNetPay      float64            `json:"totalNetPay"`
}
