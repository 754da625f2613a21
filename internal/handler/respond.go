package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// fail writes err as a {"error": ...} body with the status its kind maps
// to.  Unclassified errors are logged and hidden behind a generic message.
func fail(c echo.Context, err error) error {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrInvalidRange):
		return http.StatusBadRequest, "check_out must be after check_in"
	case errors.Is(err, booking.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, repository.ErrReservationNotFound):
		return http.StatusNotFound, "booking not found"
	case errors.Is(err, repository.ErrRoomNotFound):
		return http.StatusNotFound, "room not found"
	case errors.Is(err, repository.ErrHotelNotFound):
		return http.StatusNotFound, "hotel not found"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, booking.ErrRoomNotAvailable):
		return http.StatusConflict, "room is not available for the selected dates"
	case errors.Is(err, booking.ErrConcurrencyConflict):
		return http.StatusConflict, "room is being booked by someone else, try again"
	case errors.Is(err, repository.ErrHotelExists):
		return http.StatusConflict, "hotel already registered"
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, booking.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "booking store unavailable"
	}
	return http.StatusInternalServerError, "internal error"
}

// bindValid binds the request into v and runs the registered validator.
// It returns a client-facing message, or "" when v is usable.
func bindValid(c echo.Context, v any) string {
	if err := c.Bind(v); err != nil {
		return "invalid request body"
	}
	if err := c.Validate(v); err != nil {
		return validationMessage(err)
	}
	return ""
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return field + " is invalid"
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// dateLayouts are accepted for check-in and check-out values.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// parseDate accepts a calendar date (midnight UTC) or an RFC 3339 instant.
// Instants are cut to whole seconds, the precision of the DATETIME columns,
// so the stay that is priced is the stay that is stored.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable date %q", booking.ErrInvalidRequest, s)
}
