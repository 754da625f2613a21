package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRangeOverlaps(t *testing.T) {
	existing := DateRange{CheckIn: day("2024-01-10"), CheckOut: day("2024-01-12")}
	tests := []struct {
		name     string
		in, out  string
		overlaps bool
	}{
		{"back to back after", "2024-01-12", "2024-01-14", false},
		{"back to back before", "2024-01-08", "2024-01-10", false},
		{"straddles checkout", "2024-01-11", "2024-01-13", true},
		{"straddles checkin", "2024-01-09", "2024-01-11", true},
		{"identical", "2024-01-10", "2024-01-12", true},
		{"contains", "2024-01-01", "2024-01-31", true},
		{"inside", "2024-01-10", "2024-01-11", true},
		{"far after", "2024-02-01", "2024-02-03", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := DateRange{CheckIn: day(tt.in), CheckOut: day(tt.out)}
			assert.Equal(t, tt.overlaps, existing.Overlaps(q))
			assert.Equal(t, tt.overlaps, q.Overlaps(existing), "overlap must be symmetric")
		})
	}
}

func TestDateRangeOverlapsMatchesPredicate(t *testing.T) {
	base := day("2024-03-01")
	for a := 0; a < 6; a++ {
		for b := a + 1; b <= 6; b++ {
			for c := 0; c < 6; c++ {
				for d := c + 1; d <= 6; d++ {
					x := DateRange{CheckIn: base.AddDate(0, 0, a), CheckOut: base.AddDate(0, 0, b)}
					y := DateRange{CheckIn: base.AddDate(0, 0, c), CheckOut: base.AddDate(0, 0, d)}
					assert.Equal(t, a < d && c < b, x.Overlaps(y), "[%d,%d) vs [%d,%d)", a, b, c, d)
				}
			}
		}
	}
}

func TestNewDateRangeRejectsEmptyAndReversed(t *testing.T) {
	_, err := NewDateRange(day("2024-01-10"), day("2024-01-10"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRange))
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = NewDateRange(day("2024-01-12"), day("2024-01-10"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewDateRange(time.Time{}, day("2024-01-10"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNights(t *testing.T) {
	tests := []struct {
		in, out time.Time
		want    int64
	}{
		{day("2024-01-10"), day("2024-01-13"), 3},
		{at("2024-01-10T18:00"), at("2024-01-11T06:00"), 1},
		{at("2024-01-10T12:00"), at("2024-01-12T13:00"), 3},
		{day("2024-01-10"), day("2024-01-10"), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DateRange{CheckIn: tt.in, CheckOut: tt.out}.Nights())
	}
}
