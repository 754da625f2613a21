package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/payment"
)

// maxWebhookBody bounds the payload read from Stripe.
const maxWebhookBody = 64 << 10

// PaymentConfirmer marks reservations paid.  *booking.Controller
// implements it.
type PaymentConfirmer interface {
	MarkPaid(ctx context.Context, reservationID uint64, method string) (model.Reservation, error)
}

// StripeHandler receives Stripe webhooks.
type StripeHandler struct {
	Secret   string
	Payments PaymentConfirmer
}

func NewStripeHandler(secret string, payments PaymentConfirmer) *StripeHandler {
	if payments == nil {
		panic("nil payment confirmer passed to NewStripeHandler")
	}
	return &StripeHandler{Secret: secret, Payments: payments}
}

// Webhook handles POST /v1/stripe/webhook.  checkout.session.completed
// events carrying metadata.bookingId mark that booking paid; every other
// event is acknowledged and ignored.  A 5xx makes Stripe retry, so only
// store outages answer with one.
func (h *StripeHandler) Webhook(c echo.Context) error {
	log := zerolog.Ctx(c.Request().Context())
	if h.Secret == "" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "webhook not configured"})
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(c, "unreadable body")
	}
	event, err := webhook.ConstructEventWithOptions(payload, c.Request().Header.Get("Stripe-Signature"), h.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn().Err(err).Msg("stripe webhook rejected")
		return badRequest(c, "invalid signature")
	}
	if event.Type != "checkout.session.completed" {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	var session stripe.CheckoutSession
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &session) != nil {
		return badRequest(c, "malformed checkout session")
	}
	id, err := strconv.ParseUint(session.Metadata[payment.BookingIDKey], 10, 64)
	if err != nil || id == 0 {
		log.Warn().Str("event", event.ID).Msg("checkout session without bookingId")
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	res, err := h.Payments.MarkPaid(c.Request().Context(), id, model.PaymentMethodStripe)
	switch {
	case err == nil:
		log.Info().Uint64("booking_id", res.ID).Str("event", event.ID).Msg("booking paid")
	case errors.Is(err, booking.ErrNotFound):
		log.Warn().Uint64("booking_id", id).Str("event", event.ID).Msg("payment for unknown booking")
	default:
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
