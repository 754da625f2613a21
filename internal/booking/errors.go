// Package booking decides whether a room can be booked for a date range and
// commits that decision without letting two overlapping bookings through.
package booking

import "errors"

// Error kinds returned by this package.  Callers compare with errors.Is;
// values returned from the controller may wrap more than one kind.
var (
	// ErrInvalidRequest rejects malformed input before any store access.
	ErrInvalidRequest = errors.New("invalid booking request")
	// ErrInvalidRange is returned when check-in is not before check-out.
	ErrInvalidRange = errors.New("check-in must be before check-out")
	// ErrRoomNotAvailable means the range overlaps an existing reservation
	// or the room is not listed.  It is an expected outcome.
	ErrRoomNotAvailable = errors.New("room is not available")
	// ErrStoreUnavailable wraps store failures and timeouts.  Safe to retry.
	ErrStoreUnavailable = errors.New("reservation store unavailable")
	// ErrNotFound is returned for unknown reservations, rooms or hotels.
	ErrNotFound = errors.New("not found")
	// ErrConcurrencyConflict means a conflicting reservation was committed
	// between the availability check and the write, or the room lock could
	// not be acquired in time.
	ErrConcurrencyConflict = errors.New("concurrent booking conflict")
)
