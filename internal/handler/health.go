package handler // package handler contains the HTTP handlers of the booking API

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Health is a liveness probe.  It returns "ok" as long as the process serves
// requests.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Check is one readiness dependency, e.g. a database or Redis ping.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Ready returns a readiness probe that pings every dependency with a one
// second budget and answers 503 naming the first one that fails.
func Ready(checks ...Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
		defer cancel()
		for _, ch := range checks {
			if err := ch.Ping(ctx); err != nil {
				zerolog.Ctx(c.Request().Context()).Warn().Err(err).Str("dependency", ch.Name).Msg("not ready")
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": ch.Name + " not ready"})
			}
		}
		return c.String(http.StatusOK, "ready")
	}
}
