package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// UserLookup loads a synced user profile.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// LoadRole reads the caller's role from the users table and stores it in
// the context under "role".  Callers that have never synced their profile
// are treated as plain users so they can still reach /users/sync.
func LoadRole(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := users.GetByID(c.Request().Context(), UserID(c))
			switch {
			case err == nil:
				c.Set(ctxRole, u.Role)
			case errors.Is(err, booking.ErrNotFound):
				c.Set(ctxRole, model.RoleUser)
			default:
				zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("load role")
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "user store unavailable"})
			}
			return next(c)
		}
	}
}

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It assumes LoadRole
// ran earlier in the chain.  If the user's role is not in the allowed set,
// the request is aborted with a 403 Forbidden response.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[Role(c)] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
