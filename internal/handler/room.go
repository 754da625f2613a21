package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// MaxRoomImages bounds the images accepted per room.
const MaxRoomImages = 4

// RoomStore is the room persistence used by RoomHandler.
type RoomStore interface {
	ListListed(ctx context.Context) ([]model.RoomWithHotel, error)
	RoomWithHotel(ctx context.Context, roomID uint64) (model.RoomWithHotel, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.RoomWithHotel, error)
	Create(ctx context.Context, room *model.Room) error
	ToggleAvailability(ctx context.Context, roomID uint64, ownerID string) (model.RoomWithHotel, error)
}

// HotelLookup finds the hotel an owner manages.
type HotelLookup interface {
	HotelByOwner(ctx context.Context, ownerID string) (model.Hotel, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// RoomHandler serves public room browsing and owner room management.
type RoomHandler struct {
	Rooms    RoomStore
	Hotels   HotelLookup
	Uploader ImageUploader // may be nil; requests carrying images are then refused
}

func NewRoomHandler(rooms RoomStore, hotels HotelLookup, uploader ImageUploader) *RoomHandler {
	if rooms == nil || hotels == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Hotels: hotels, Uploader: uploader}
}

// ListRooms handles GET /v1/rooms: listed rooms with their hotel, newest
// first.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListListed(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// GetRoom handles GET /v1/rooms/:id.
func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	room, err := h.Rooms.RoomWithHotel(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// OwnerRooms handles GET /v1/rooms/owner.
func (h *RoomHandler) OwnerRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListByOwner(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

type createRoomForm struct {
	RoomType           string `form:"room_type" validate:"required,max=64"`
	PricePerNightCents int64  `form:"price_per_night_cents" validate:"gt=0"`
	Amenities          string `form:"amenities"`
}

// CreateRoom handles POST /v1/rooms (multipart).  Fields: room_type,
// price_per_night_cents, amenities (JSON array) and up to MaxRoomImages
// files under "images".  The room is added to the caller's hotel.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var form createRoomForm
	if msg := bindValid(c, &form); msg != "" {
		return badRequest(c, msg)
	}
	var amenities []string
	if s := strings.TrimSpace(form.Amenities); s != "" {
		if err := json.Unmarshal([]byte(s), &amenities); err != nil {
			return badRequest(c, "amenities must be a JSON array of strings")
		}
	}
	var files []*multipart.FileHeader
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		files = mf.File["images"]
	}
	if len(files) > MaxRoomImages {
		return badRequest(c, fmt.Sprintf("at most %d images are allowed", MaxRoomImages))
	}
	if len(files) > 0 && h.Uploader == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "image upload not configured"})
	}

	ctx := c.Request().Context()
	hotel, err := h.Hotels.HotelByOwner(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	images, err := h.upload(ctx, files)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "image upload failed"})
	}

	room := &model.Room{
		HotelID:            hotel.ID,
		RoomType:           form.RoomType,
		PricePerNightCents: form.PricePerNightCents,
		Amenities:          amenities,
		Images:             images,
	}
	if err := h.Rooms.Create(ctx, room); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		url, err := h.Uploader.Upload(ctx, fh.Filename, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// ToggleAvailability handles POST /v1/rooms/:id/toggle-availability.  Only
// the owner of the room's hotel may flip it.
func (h *RoomHandler) ToggleAvailability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	room, err := h.Rooms.ToggleAvailability(c.Request().Context(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}
