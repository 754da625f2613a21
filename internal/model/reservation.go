package model

import "time"

// PaymentStatus tracks whether a reservation has been paid for.  It only
// ever moves from UNPAID to PAID.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// Payment methods recorded on a reservation.
const (
	PaymentMethodAtHotel = "Pay At Hotel"
	PaymentMethodStripe  = "Stripe"
)

// Reservation records a guest's booking of one room over the half-open
// range [CheckIn, CheckOut).  Reservations are created by the admission
// controller and are immutable except for their payment fields.
//
// Fields:
//
//	ID              – primary key assigned by the store.
//	UserID          – identity provider id of the guest.
//	RoomID          – room being booked.
//	HotelID         – hotel owning the room at booking time.
//	CheckIn         – first instant of the stay.
//	CheckOut        – end of the stay, excluded from the range.
//	Guests          – number of guests, at least one.
//	TotalPriceCents – computed total in cents.
//	PaymentStatus   – UNPAID or PAID.
//	PaymentMethod   – how the guest pays.
type Reservation struct {
	ID              uint64        `json:"id"`
	UserID          string        `json:"user_id"`
	RoomID          uint64        `json:"room_id"`
	HotelID         uint64        `json:"hotel_id"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	Guests          int           `json:"guests"`
	TotalPriceCents int64         `json:"total_price_cents"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentMethod   string        `json:"payment_method"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsPaid reports whether the reservation has been paid.
func (r Reservation) IsPaid() bool { return r.PaymentStatus == PaymentPaid }

// ReservationDetail is a reservation joined with the room and hotel it
// belongs to.  It backs the guest history and owner dashboard listings.
type ReservationDetail struct {
	Reservation
	RoomType  string `json:"room_type"`
	HotelName string `json:"hotel_name"`
	Address   string `json:"hotel_address"`
}
