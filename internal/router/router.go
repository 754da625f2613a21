package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Bookings *handler.BookingHandler
	Rooms    *handler.RoomHandler
	Hotels   *handler.HotelHandler
	Users    *handler.UserHandler
	Stripe   *handler.StripeHandler
	Checkout *handler.CheckoutHandler
	Ready    echo.HandlerFunc
}

// RegisterRoutes registers routes that do not require authentication:
// probes, metrics, room browsing, availability checks and the Stripe
// webhook.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	if h.Ready != nil {
		e.GET("/readyz", h.Ready)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group("/v1")
	g.GET("/rooms", h.Rooms.ListRooms)
	g.GET("/rooms/:id", h.Rooms.GetRoom)
	g.POST("/bookings/check-availability", h.Bookings.CheckAvailability)
	g.POST("/stripe/webhook", h.Stripe.Webhook)
}
