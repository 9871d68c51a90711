package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePenalty(t *testing.T) {
	const base = 1_000_000.0

	cases := []struct {
		minutesLate int
		penalty     float64
	}{
		{0, 0},
		{1, 50_000},
		{4, 50_000},
		{5, 50_000},
		{6, 100_000},
		{10, 100_000},
		{11, 150_000},
		{49, 500_000},
		{50, 500_000},
		{51, 500_000},
		{200, 500_000},
	}
	for _, tc := range cases {
		got := ComputePenalty(tc.minutesLate, base)
		assert.Equal(t, base, got.BasePay, "minutesLate=%d", tc.minutesLate)
		assert.Equal(t, tc.penalty, got.PenaltyAmount, "minutesLate=%d", tc.minutesLate)
		assert.Equal(t, base-tc.penalty, got.NetPay, "minutesLate=%d", tc.minutesLate)
	}
}

func TestComputePenaltyNeverBelowHalfPay(t *testing.T) {
	for _, base := range []float64{0, 1, 99.5, 250_000, 1_000_000} {
		prev := 0.0
		for late := 0; late <= 300; late++ {
			got := ComputePenalty(late, base)
			assert.GreaterOrEqual(t, got.PenaltyAmount, prev, "penalty must not decrease")
			assert.LessOrEqual(t, got.PenaltyAmount, base*0.5)
			assert.GreaterOrEqual(t, got.NetPay, base*0.5)
			assert.InDelta(t, got.BasePay-got.PenaltyAmount, got.NetPay, 1e-9)
			prev = got.PenaltyAmount
		}
	}
}

func TestComputePenaltyNegativeBasePay(t *testing.T) {
	got := ComputePenalty(30, -100)
	assert.Equal(t, Pay{}, got)
}
