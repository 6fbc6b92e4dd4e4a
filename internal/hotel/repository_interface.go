package hotel

import (
	"context"
	"time"
)

type Repository interface {
	GetHotelByID(ctx context.Context, id int) (*Hotel, error)
	// CountFreeRooms counts active+available rooms of the given type with no
	// overlapping confirmed or checked-in booking in [checkIn, checkOut).
	CountFreeRooms(ctx context.Context, hotelID int, roomType RoomType, checkIn, checkOut time.Time) (int, error)
	// CountRooms counts all active+available rooms at the hotel.
	CountRooms(ctx context.Context, hotelID int) (int, error)
	// CountBookedRooms counts distinct rooms at the hotel with an overlapping
	// confirmed or checked-in booking in [checkIn, checkOut).
	CountBookedRooms(ctx context.Context, hotelID int, checkIn, checkOut time.Time) (int, error)
}
