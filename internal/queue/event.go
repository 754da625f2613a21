// Package queue defines the booking.created message and its consumer.
package queue

import (
	"time"

	"github.com/iliyamo/hotel-booking/internal/booking"
)

// BookingCreatedQueue is the default queue name.
const BookingCreatedQueue = "booking.created"

// BookingCreatedEvent is published after a reservation commits.  It carries
// enough to render the confirmation email without querying the database;
// only the recipient address is looked up by the consumer.
type BookingCreatedEvent struct {
	ReservationID   uint64    `json:"reservation_id"`
	UserID          string    `json:"user_id"`
	RoomID          uint64    `json:"room_id"`
	RoomType        string    `json:"room_type"`
	HotelID         uint64    `json:"hotel_id"`
	HotelName       string    `json:"hotel_name"`
	HotelAddress    string    `json:"hotel_address"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Nights          int64     `json:"nights"`
	Guests          int       `json:"guests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	PaymentMethod   string    `json:"payment_method"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewBookingCreatedEvent flattens a confirmation into an event.
func NewBookingCreatedEvent(c booking.Confirmation) BookingCreatedEvent {
	r := c.Reservation
	return BookingCreatedEvent{
		ReservationID:   r.ID,
		UserID:          r.UserID,
		RoomID:          r.RoomID,
		RoomType:        c.Room.RoomType,
		HotelID:         r.HotelID,
		HotelName:       c.Hotel.Name,
		HotelAddress:    c.Hotel.Address,
		CheckIn:         r.CheckIn,
		CheckOut:        r.CheckOut,
		Nights:          booking.DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}.Nights(),
		Guests:          r.Guests,
		TotalPriceCents: r.TotalPriceCents,
		PaymentMethod:   r.PaymentMethod,
		CreatedAt:       r.CreatedAt,
	}
}

// Valid reports whether the event identifies a reservation and its guest.
func (e BookingCreatedEvent) Valid() bool {
	return e.ReservationID != 0 && e.UserID != "" && e.CheckOut.After(e.CheckIn)
}
