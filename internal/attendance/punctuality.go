package attendance

import (
	"time"

	"alcyxob/gym-attendance/internal/domain"
)

const (
	// Trainers must arrive this long before the session starts to be on time.
	PunctualityLeadTime = 15 * time.Minute
	// Check-ins earlier than this before the session start are rejected.
	EarliestCheckInLeadTime = 30 * time.Minute
)

// Punctuality is the classification of a single check-in.
type Punctuality struct {
	Status      domain.CheckInStatus
	MinutesLate int
}

// Deadline is the last on-time check-in instant for a session starting at start.
func Deadline(start time.Time) time.Time {
	return start.Add(-PunctualityLeadTime)
}

// EarliestCheckIn is the first instant a check-in for a session starting at
// start is accepted.
func EarliestCheckIn(start time.Time) time.Time {
	return start.Add(-EarliestCheckInLeadTime)
}

// EvaluateCheckIn classifies checkIn against the deadline derived from start.
// Lateness is measured from the deadline, not from the session start. A late
// check-in is always at least one minute late.
func EvaluateCheckIn(checkIn, start time.Time) Punctuality {
	deadline := Deadline(start)
	if !checkIn.After(deadline) {
		return Punctuality{Status: domain.CheckInOnTime}
	}
	late := MinutesBetween(checkIn, deadline)
	if late < 1 {
		late = 1
	}
	return Punctuality{Status: domain.CheckInLate, MinutesLate: late}
}
