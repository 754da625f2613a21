// Package repository defines error types that are reused across multiple
// repositories.  Lookups that the booking core depends on wrap
// booking.ErrNotFound so the controller can classify them; the rest are
// plain sentinels that handlers translate into HTTP responses.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-booking/internal/booking"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrHotelExists is returned when an owner tries to register a second hotel.
var ErrHotelExists = errors.New("hotel already registered for this owner")

// Not-found errors.  All of them match booking.ErrNotFound.
var (
	ErrReservationNotFound = fmt.Errorf("reservation %w", booking.ErrNotFound)
	ErrRoomNotFound        = fmt.Errorf("room %w", booking.ErrNotFound)
	ErrHotelNotFound       = fmt.Errorf("hotel %w", booking.ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", booking.ErrNotFound)
)

// isDuplicate reports a MySQL unique key violation (error 1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// isForeignKeyViolation reports a MySQL child row referencing a missing
// parent (error 1452).
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1452
}
