package booking

import (
	"fmt"
	"time"
)

// Day is the billing unit for a stay.
const Day = 24 * time.Hour

// DateRange is the half-open interval [CheckIn, CheckOut).  The check-out
// instant is free so one guest can leave the day another arrives.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange returns a range after checking CheckIn < CheckOut.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate reports ErrInvalidRange unless CheckIn is strictly before CheckOut.
func (r DateRange) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() || !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrInvalidRange)
	}
	return nil
}

// Overlaps reports whether two half-open ranges share any instant:
// [a,b) and [c,d) overlap iff a < d and c < b.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// Nights is the number of billable nights; partial days round up.
func (r DateRange) Nights() int64 {
	d := r.CheckOut.Sub(r.CheckIn)
	if d <= 0 {
		return 0
	}
	n := int64(d / Day)
	if d%Day != 0 {
		n++
	}
	return n
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.CheckIn.Format(time.RFC3339), r.CheckOut.Format(time.RFC3339))
}
