package model

import "time"

// DefaultRoomRating is the rating a freshly listed room starts with.
const DefaultRoomRating = 4.5

// Room is a bookable unit of a hotel.  IsAvailable is the owner's listing
// switch and is unrelated to whether any dates are already reserved.
type Room struct {
	ID                 uint64    `json:"id"`
	HotelID            uint64    `json:"hotel_id"`
	RoomType           string    `json:"room_type"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	Amenities          []string  `json:"amenities"`
	Images             []string  `json:"images"`
	IsAvailable        bool      `json:"is_available"`
	Rating             float64   `json:"rating"`
	ReviewsCount       int       `json:"reviews_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// RoomWithHotel bundles a room with its hotel for listings and booking.
type RoomWithHotel struct {
	Room
	Hotel Hotel `json:"hotel"`
}
