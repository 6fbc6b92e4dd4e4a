package booking

import (
	"context"
	"time"

	"staylock/internal/hotel"
)

// AllocateParams describes one confirmed-booking insert: pick the first
// eligible room in ascending id order and commit the row in the same
// transaction.
type AllocateParams struct {
	Reference   string
	UserID      int
	HotelID     int
	RoomType    hotel.RoomType
	CheckIn     time.Time
	CheckOut    time.Time
	Guests      int
	TotalAmount float64
}

type Repository interface {
	// AllocateAndConfirm selects a concrete room and inserts the booking as
	// confirmed within one transaction, rechecking overlap at commit time.
	// The advisory lock layer is not trusted here: this is the
	// authoritative consistency layer.
	AllocateAndConfirm(ctx context.Context, p AllocateParams) (*Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*Booking, error)
}
