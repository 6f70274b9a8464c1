package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 was a Monday.
func day(d int) time.Time {
	return time.Date(2024, time.January, d, 12, 0, 0, 0, time.UTC)
}

func TestPriorBusinessDay(t *testing.T) {
	tests := []struct {
		name      string
		reference time.Time
		n         int
		expected  time.Time
	}{
		{"weekday n=0 is itself", day(5), 0, day(5)},         // Fri -> Fri
		{"saturday n=0 walks back", day(6), 0, day(5)},       // Sat -> Fri
		{"sunday n=0 walks back", day(7), 0, day(5)},         // Sun -> Fri
		{"monday n=1 skips weekend", day(8), 1, day(5)},      // Mon -> Fri
		{"friday n=1 is thursday", day(5), 1, day(4)},        // Fri -> Thu
		{"monday n=2 is thursday", day(8), 2, day(4)},        // Mon -> Thu
		{"sunday n=1 is friday", day(7), 1, day(5)},          // Sun -> Fri
		{"tuesday n=5 spans a week", day(9), 5, day(2)},      // Tue -> prior Tue
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriorBusinessDay(tt.reference, tt.n)
			assert.Equal(t, tt.expected.Year(), got.Year())
			assert.Equal(t, tt.expected.Month(), got.Month())
			assert.Equal(t, tt.expected.Day(), got.Day())
		})
	}
}

func TestFilterTime(t *testing.T) {
	cutoff, err := FilterTime(day(5), 16, 30, "America/New_York")
	require.NoError(t, err)

	assert.Equal(t, 16, cutoff.Hour())
	assert.Equal(t, 30, cutoff.Minute())
	assert.Equal(t, 5, cutoff.Day())
	assert.Equal(t, "America/New_York", cutoff.Location().String())
}

func TestFilterTimeBadTimezone(t *testing.T) {
	_, err := FilterTime(day(5), 16, 0, "Nowhere/Invalid")
	assert.Error(t, err)
}
