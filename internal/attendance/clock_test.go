package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestParseHHMM(t *testing.T) {
	valid := map[string][2]int{
		"00:00": {0, 0},
		"07:05": {7, 5},
		"23:59": {23, 59},
		"19:30": {19, 30},
	}
	for in, want := range valid {
		h, m, err := ParseHHMM(in)
		require.NoError(t, err, in)
		assert.Equal(t, want[0], h, in)
		assert.Equal(t, want[1], m, in)
	}

	for _, in := range []string{"", "7:05", "24:00", "12:60", "12-30", "12:3", "12:300", " 12:30", "ab:cd"} {
		_, _, err := ParseHHMM(in)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, in)
	}
}

func TestClockToInstant(t *testing.T) {
	loc := mustLoad(t, "Asia/Ho_Chi_Minh")
	clock := NewClock(loc)

	// Stored dates are midnight local time, which is the previous day in UTC.
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, loc).UTC()

	got, err := clock.ToInstant(date, "08:30")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 14, 8, 30, 0, 0, loc)))
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, 0, got.Nanosecond())

	_, err = clock.ToInstant(date, "8:30")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestClockDefaultsToUTC(t *testing.T) {
	var clock Clock
	got, err := clock.ToInstant(time.Date(2026, 1, 2, 15, 4, 5, 6, time.UTC), "10:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), got)
}

func TestMinutesBetween(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		a    time.Time
		want int
	}{
		{"equal", base, 0},
		{"ten minutes after", base.Add(10 * time.Minute), 10},
		{"ten minutes before", base.Add(-10 * time.Minute), -10},
		{"one second after", base.Add(time.Second), 0},
		{"29 seconds after", base.Add(29 * time.Second), 0},
		{"30 seconds after", base.Add(30 * time.Second), 1},
		{"30 seconds before", base.Add(-30 * time.Second), 0},
		{"31 seconds before", base.Add(-31 * time.Second), -1},
		{"90 minutes 40 seconds after", base.Add(90*time.Minute + 40*time.Second), 91},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MinutesBetween(tc.a, base))
		})
	}
}

func TestMinutesUntil(t *testing.T) {
	target := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, MinutesUntil(target, target))
	assert.Equal(t, 0, MinutesUntil(target.Add(time.Minute), target))
	assert.Equal(t, 1, MinutesUntil(target.Add(-time.Second), target))
	assert.Equal(t, 15, MinutesUntil(target.Add(-15*time.Minute), target))
	assert.Equal(t, 16, MinutesUntil(target.Add(-15*time.Minute-time.Second), target))
}
