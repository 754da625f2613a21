// Package payment opens Stripe Checkout sessions for unpaid bookings.  The
// session carries the booking id in its metadata; the webhook handler
// uses it to mark the booking paid once Stripe reports completion.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/iliyamo/hotel-booking/internal/booking"
)

// BookingIDKey is the session metadata key holding the booking id.
const BookingIDKey = "bookingId"

// StripeCheckout creates hosted checkout pages.
type StripeCheckout struct {
	sessions *session.Client
	currency string
	appURL   string
}

// NewStripeCheckout returns a client for secretKey.  Guests come back to
// appURL after paying or cancelling.  A nil backend uses Stripe's API.
func NewStripeCheckout(secretKey, currency, appURL string, backend stripe.Backend) (*StripeCheckout, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is not set")
	}
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeCheckout{
		sessions: &session.Client{B: backend, Key: secretKey},
		currency: strings.ToLower(currency),
		appURL:   strings.TrimRight(appURL, "/"),
	}, nil
}

// CreateCheckout opens a one-item payment session for the booking's total
// and returns the URL the guest is sent to.
func (s *StripeCheckout) CreateCheckout(ctx context.Context, conf booking.Confirmation) (string, error) {
	res := conf.Reservation
	id := strconv.FormatUint(res.ID, 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(res.UserID),
		SuccessURL:        stripe.String(s.appURL + "/my-bookings"),
		CancelURL:         stripe.String(s.appURL + "/my-bookings"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(res.TotalPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s, %s", conf.Hotel.Name, conf.Room.RoomType)),
					Description: stripe.String(fmt.Sprintf("%s to %s",
						res.CheckIn.Format("2006-01-02"), res.CheckOut.Format("2006-01-02"))),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.AddMetadata(BookingIDKey, id)

	cs, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("checkout for booking %s: %w", id, err)
	}
	return cs.URL, nil
}
