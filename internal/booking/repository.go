package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNoRoomAvailable = errors.New("no available room for the requested dates")
	ErrBookingNotFound = errors.New("booking not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) AllocateAndConfirm(ctx context.Context, p AllocateParams) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Deterministic ascending-id scan. PENDING bookings block a concrete
	// room here even though they do not reduce the advertised free count.
	roomQuery := `
		SELECT r.id
		FROM rooms r
		WHERE r.hotel_id = $1
		  AND r.room_type = $2
		  AND r.is_active = TRUE
		  AND r.is_available = TRUE
		  AND r.capacity >= $3
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = r.id
			  AND b.check_in < $5
			  AND b.check_out > $4
			  AND b.status IN ('pending', 'confirmed', 'checked_in')
		  )
		ORDER BY r.id
		LIMIT 1
		FOR UPDATE OF r
	`

	overlapQuery := `
		SELECT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = $1
			  AND b.check_in < $3
			  AND b.check_out > $2
			  AND b.status IN ('pending', 'confirmed', 'checked_in')
		)
	`

	// Two finalizers racing under READ COMMITTED both pick the lowest-id
	// free room; the loser waits on the winner's FOR UPDATE row lock and
	// wakes with an overlap check evaluated against a snapshot taken before
	// the winner committed. The room row itself was only locked, not
	// updated, so Postgres does not re-run the predicate for us. Re-check
	// overlap in a fresh statement (fresh snapshot) after acquiring the
	// lock, and rescan on conflict: the next locking SELECT sees the
	// committed booking and skips the room.
	var roomID int
	for {
		err = tx.GetContext(ctx, &roomID, roomQuery, p.HotelID, p.RoomType, p.Guests, p.CheckIn, p.CheckOut)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNoRoomAvailable
			}
			return nil, fmt.Errorf("failed to find an available room: %w", err)
		}

		var conflict bool
		if err := tx.GetContext(ctx, &conflict, overlapQuery, roomID, p.CheckIn, p.CheckOut); err != nil {
			return nil, fmt.Errorf("failed to recheck overlap: %w", err)
		}
		if !conflict {
			break
		}
	}

	insertQuery := `
		INSERT INTO bookings (reference, user_id, room_id, check_in, check_out, guests, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'confirmed')
		RETURNING id, reference, user_id, room_id, check_in, check_out, guests, total_amount, status, created_at
	`

	var booking Booking
	err = tx.GetContext(ctx, &booking, insertQuery,
		p.Reference, p.UserID, roomID, p.CheckIn, p.CheckOut, p.Guests, p.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return &booking, nil
}

func (r *repository) GetBookingByReference(ctx context.Context, reference string) (*Booking, error) {
	query := `
		SELECT id, reference, user_id, room_id, check_in, check_out, guests, total_amount, status, created_at
		FROM bookings
		WHERE reference = $1
	`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}
