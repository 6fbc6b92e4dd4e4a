package hotel

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for check-in/check-out dates. Date ranges
// are half-open: [check_in, check_out).
const DateLayout = "2006-01-02"

// RoomType enumerates the bookable room categories. Values are stored
// lowercase; parsing is case-insensitive.
type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeDeluxe RoomType = "deluxe"
	RoomTypeSuite  RoomType = "suite"
	RoomTypeFamily RoomType = "family"
)

var roomTypes = map[RoomType]bool{
	RoomTypeSingle: true,
	RoomTypeDouble: true,
	RoomTypeDeluxe: true,
	RoomTypeSuite:  true,
	RoomTypeFamily: true,
}

// ParseRoomType normalizes and validates a room type string.
func ParseRoomType(s string) (RoomType, error) {
	rt := RoomType(strings.ToLower(strings.TrimSpace(s)))
	if !roomTypes[rt] {
		return "", fmt.Errorf("invalid room type: %s (valid: single, double, deluxe, suite, family)", s)
	}
	return rt, nil
}

// ParseDate parses a YYYY-MM-DD date string in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

type Hotel struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	City      string    `db:"city" json:"city"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Room struct {
	ID          int       `db:"id" json:"id"`
	HotelID     int       `db:"hotel_id" json:"hotel_id"`
	RoomNumber  string    `db:"room_number" json:"room_number"`
	RoomType    RoomType  `db:"room_type" json:"room_type"`
	Capacity    int       `db:"capacity" json:"capacity"`
	BasePrice   float64   `db:"base_price" json:"base_price"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
