package booking

import "time"

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCancelled  = "cancelled"
)

type Booking struct {
	ID          int       `db:"id" json:"id"`
	Reference   string    `db:"reference" json:"reference"`
	UserID      int       `db:"user_id" json:"user_id"`
	RoomID      int       `db:"room_id" json:"room_id"`
	CheckIn     time.Time `db:"check_in" json:"check_in"`
	CheckOut    time.Time `db:"check_out" json:"check_out"`
	Guests      int       `db:"guests" json:"guests"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateBookingRequest struct {
	LockID   string `json:"lock_id" binding:"required" validate:"required"`
	HotelID  int    `json:"hotel_id" binding:"required" validate:"required,gt=0"`
	RoomType string `json:"room_type" binding:"required" validate:"required"`
	CheckIn  string `json:"check_in" binding:"required" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" binding:"required" validate:"required,datetime=2006-01-02"`
	Guests   int    `json:"guests" binding:"required" validate:"required,min=1"`
}
