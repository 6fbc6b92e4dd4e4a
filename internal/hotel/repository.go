package hotel

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrHotelNotFound = errors.New("hotel not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetHotelByID(ctx context.Context, id int) (*Hotel, error) {
	query := `
		SELECT id, name, city, created_at
		FROM hotels
		WHERE id = $1
	`

	var hotel Hotel
	err := r.db.GetContext(ctx, &hotel, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}

	return &hotel, nil
}

// Overlap rule for half-open ranges: [a1,a2) and [b1,b2) overlap iff
// a1 < b2 AND b1 < a2. Only confirmed and checked-in bookings block a room.
func (r *repository) CountFreeRooms(ctx context.Context, hotelID int, roomType RoomType, checkIn, checkOut time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM rooms r
		WHERE r.hotel_id = $1
		  AND r.room_type = $2
		  AND r.is_active = TRUE
		  AND r.is_available = TRUE
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = r.id
			  AND b.check_in < $4
			  AND b.check_out > $3
			  AND b.status IN ('confirmed', 'checked_in')
		  )
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, hotelID, roomType, checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CountRooms counts every room at the hotel, active or not: the occupancy
// rate is booked over the full inventory, and filtering the denominator
// while the numerator counts all bookings would inflate the rate.
func (r *repository) CountRooms(ctx context.Context, hotelID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM rooms
		WHERE hotel_id = $1
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, hotelID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) CountBookedRooms(ctx context.Context, hotelID int, checkIn, checkOut time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT b.room_id)
		FROM bookings b
		JOIN rooms r ON b.room_id = r.id
		WHERE r.hotel_id = $1
		  AND b.check_in < $3
		  AND b.check_out > $2
		  AND b.status IN ('confirmed', 'checked_in')
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, hotelID, checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	return count, nil
}
