package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterOwner registers hotelOwner endpoints under /v1.  The role comes
// from the users table, not from the token.
func RegisterOwner(e *echo.Echo, h Handlers, jwtSecret string, users middleware.UserLookup) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.LoadRole(users),
		middleware.RequireRole(model.RoleHotelOwner),
	)

	// ---- Rooms ----
	g.POST("/rooms", h.Rooms.CreateRoom)
	g.GET("/rooms/owner", h.Rooms.OwnerRooms)
	g.POST("/rooms/:id/toggle-availability", h.Rooms.ToggleAvailability)

	// ---- Dashboard ----
	g.GET("/bookings/hotel", h.Bookings.HotelBookings)
}
