package booking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultStoreTimeout bounds a single store call.
const DefaultStoreTimeout = 5 * time.Second

// Checker answers availability questions straight from the store.  It keeps
// no state between calls.
type Checker struct {
	store   ReservationStore
	timeout time.Duration
}

// NewChecker returns a Checker reading from store.  A non-positive timeout
// falls back to DefaultStoreTimeout.
func NewChecker(store ReservationStore, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Checker{store: store, timeout: timeout}
}

// IsAvailable reports whether no reservation of roomID overlaps
// [checkIn, checkOut).  Unpaid reservations block the range too.
func (c *Checker) IsAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	stay, err := NewDateRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return c.isAvailable(ctx, roomID, stay)
}

func (c *Checker) isAvailable(ctx context.Context, roomID uint64, stay DateRange) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	found, err := c.store.FindOverlapping(ctx, roomID, stay)
	if err != nil {
		return false, storeError(err)
	}
	for _, r := range found {
		if r.RoomID == roomID && stay.Overlaps(DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}) {
			return false, nil
		}
	}
	return true, nil
}

// storeError classifies a store failure.  Kinds the store reports on
// purpose pass through; everything else, timeouts included, becomes
// ErrStoreUnavailable.
func storeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}
