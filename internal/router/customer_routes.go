package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
)

// RegisterCustomer registers endpoints available to every signed-in user.
// The role is loaded so that handlers and later groups can rely on it.
func RegisterCustomer(e *echo.Echo, h Handlers, jwtSecret string, users middleware.UserLookup) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.LoadRole(users),
	)
	g.POST("/users/sync", h.Users.Sync)
	g.GET("/users/me", h.Users.Me)
	g.POST("/users/recent-cities", h.Users.AddRecentCity)

	// Any user may register a hotel and become its owner.
	g.POST("/hotels", h.Hotels.RegisterHotel)

	g.POST("/bookings", h.Bookings.CreateBooking)
	g.GET("/bookings/mine", h.Bookings.MyBookings)
	g.POST("/bookings/:id/pay", h.Checkout.Pay)
}
