package attendance

import "math"

// Lateness penalty policy.
const (
	PenaltyBlockMinutes    = 5  // every started block counts in full
	PenaltyPercentPerBlock = 5  // percent of base pay per block
	PenaltyCapPercent      = 50 // penalty never exceeds this share of base pay
)

// Pay is the pay breakdown for one session.
type Pay struct {
	BasePay       float64
	PenaltyAmount float64
	NetPay        float64
}

// ComputePenalty applies the lateness penalty to basePay. A negative basePay
// is treated as zero.
func ComputePenalty(minutesLate int, basePay float64) Pay {
	if basePay < 0 {
		basePay = 0
	}
	if minutesLate <= 0 {
		return Pay{BasePay: basePay, NetPay: basePay}
	}

	units := (minutesLate + PenaltyBlockMinutes - 1) / PenaltyBlockMinutes
	raw := basePay * float64(units*PenaltyPercentPerBlock) / 100
	capped := basePay * PenaltyCapPercent / 100
	penalty := math.Min(raw, capped)

	return Pay{
		BasePay:       basePay,
		PenaltyAmount: penalty,
		NetPay:        basePay - penalty,
	}
}
