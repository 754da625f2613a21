package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/middleware"
)

// GuestBookings resolves a booking owned by the caller.
// *booking.Controller implements it.
type GuestBookings interface {
	GuestBooking(ctx context.Context, userID string, id uint64) (booking.Confirmation, error)
}

// CheckoutCreator opens a hosted payment page and returns its URL.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, conf booking.Confirmation) (string, error)
}

// CheckoutHandler starts online payment for a booking.
type CheckoutHandler struct {
	Bookings GuestBookings
	Sessions CheckoutCreator // nil when online payment is disabled
}

func NewCheckoutHandler(bookings GuestBookings, sessions CheckoutCreator) *CheckoutHandler {
	if bookings == nil {
		panic("nil booking lookup passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Bookings: bookings, Sessions: sessions}
}

// Pay handles POST /v1/bookings/:id/pay and answers {"url": ...}, the
// Stripe page the client redirects the guest to.
func (h *CheckoutHandler) Pay(c echo.Context) error {
	if h.Sessions == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "online payment not configured"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx := c.Request().Context()
	conf, err := h.Bookings.GuestBooking(ctx, middleware.UserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	if conf.Reservation.IsPaid() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already paid"})
	}
	url, err := h.Sessions.CreateCheckout(ctx, conf)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint64("booking_id", id).Msg("stripe checkout failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
