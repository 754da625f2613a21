package booking

import (
	"context"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// ReservationStore is the durable record of bookings.  Implementations
// return ErrNotFound for unknown ids and ErrConcurrencyConflict from
// InsertIfAvailable when an overlapping reservation exists at commit time.
// Any other error is treated as the store being unavailable.
type ReservationStore interface {
	// FindOverlapping returns reservations of roomID overlapping stay.
	FindOverlapping(ctx context.Context, roomID uint64, stay DateRange) ([]model.Reservation, error)
	// InsertIfAvailable re-checks overlap and inserts res atomically,
	// populating res.ID and the timestamps on success.
	InsertIfAvailable(ctx context.Context, res *model.Reservation) error
	GetReservation(ctx context.Context, id uint64) (model.Reservation, error)
	// MarkPaid moves an UNPAID reservation to PAID and returns the row as
	// stored afterwards.  Already-paid rows are returned unchanged.
	MarkPaid(ctx context.Context, id uint64, method string) (model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]model.ReservationDetail, error)
	ListByHotel(ctx context.Context, hotelID uint64) ([]model.ReservationDetail, error)
}

// RoomCatalog resolves the rooms and hotels a booking refers to.  Rooms
// are read-only from the controller's point of view.
type RoomCatalog interface {
	RoomWithHotel(ctx context.Context, roomID uint64) (model.RoomWithHotel, error)
	HotelByOwner(ctx context.Context, ownerID string) (model.Hotel, error)
}
