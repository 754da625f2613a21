package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingService is the admission core as seen by the HTTP layer.
// *booking.Controller implements it.
type BookingService interface {
	IsAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error)
	CreateBooking(ctx context.Context, req booking.Request) (model.Reservation, error)
	UserBookings(ctx context.Context, userID string) ([]model.ReservationDetail, error)
	HotelDashboard(ctx context.Context, ownerID string) (booking.Dashboard, error)
}

// BookingHandler serves availability checks, booking creation and the
// guest and owner booking listings.
type BookingHandler struct {
	Bookings BookingService
}

// NewBookingHandler panics when svc is nil.
func NewBookingHandler(svc BookingService) *BookingHandler {
	if svc == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: svc}
}

type stayRequest struct {
	RoomID   uint64 `json:"room_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

func (r stayRequest) dates() (time.Time, time.Time, error) {
	in, err := parseDate(r.CheckIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := parseDate(r.CheckOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

// CheckAvailability handles POST /v1/bookings/check-availability and
// answers {"available": bool}.  It never creates anything.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var body stayRequest
	if msg := bindValid(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	in, out, err := body.dates()
	if err != nil {
		return fail(c, err)
	}
	ok, err := h.Bookings.IsAvailable(c.Request().Context(), body.RoomID, in, out)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": ok})
}

// CreateBooking handles POST /v1/bookings.  On success it returns 201 with
// the reservation.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body struct {
		stayRequest
		Guests int `json:"guests" validate:"min=1,max=20"`
	}
	if msg := bindValid(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	in, out, err := body.dates()
	if err != nil {
		return fail(c, err)
	}
	res, err := h.Bookings.CreateBooking(c.Request().Context(), booking.Request{
		UserID:   middleware.UserID(c),
		RoomID:   body.RoomID,
		CheckIn:  in,
		CheckOut: out,
		Guests:   body.Guests,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// MyBookings handles GET /v1/bookings/mine.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	list, err := h.Bookings.UserBookings(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// HotelBookings handles GET /v1/bookings/hotel: the owner dashboard with
// totals and every booking of the caller's hotel.
func (h *BookingHandler) HotelBookings(c echo.Context) error {
	d, err := h.Bookings.HotelDashboard(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
