package booking

import (
	"fmt"
	"time"
)

// ComputeTotal prices a stay: the nightly rate times the number of nights,
// where any started day counts as a full night.
func ComputeTotal(nightlyRateCents int64, checkIn, checkOut time.Time) (int64, error) {
	if nightlyRateCents < 0 {
		return 0, fmt.Errorf("%w: negative nightly rate", ErrInvalidRequest)
	}
	nights := DateRange{CheckIn: checkIn, CheckOut: checkOut}.Nights()
	if nights <= 0 {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, ErrInvalidRange)
	}
	return nightlyRateCents * nights, nil
}
