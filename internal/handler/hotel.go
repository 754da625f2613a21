package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelStore registers hotels.
type HotelStore interface {
	Create(ctx context.Context, h *model.Hotel) error
}

type HotelHandler struct {
	Hotels HotelStore
}

func NewHotelHandler(hotels HotelStore) *HotelHandler {
	if hotels == nil {
		panic("nil repository passed to NewHotelHandler")
	}
	return &HotelHandler{Hotels: hotels}
}

// RegisterHotel handles POST /v1/hotels.  The caller becomes a hotel owner;
// a second registration by the same owner is rejected with 409.
func (h *HotelHandler) RegisterHotel(c echo.Context) error {
	var body struct {
		Name    string `json:"name" validate:"required,max=128"`
		Address string `json:"address" validate:"required,max=255"`
		Contact string `json:"contact" validate:"required,max=64"`
		City    string `json:"city" validate:"required,max=64"`
	}
	if msg := bindValid(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	hotel := &model.Hotel{
		Name:    body.Name,
		Address: body.Address,
		Contact: body.Contact,
		City:    body.City,
		OwnerID: middleware.UserID(c),
	}
	if err := h.Hotels.Create(c.Request().Context(), hotel); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, hotel)
}
