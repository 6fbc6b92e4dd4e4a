package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"staylock/internal/hotel"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func date(t *testing.T, s string) time.Time {
	d, err := hotel.ParseDate(s)
	require.NoError(t, err)
	return d
}

func allocateParams(t *testing.T) AllocateParams {
	return AllocateParams{
		Reference:   "BK-20250601-3FA9",
		UserID:      42,
		HotelID:     1,
		RoomType:    hotel.RoomTypeDouble,
		CheckIn:     date(t, "2025-06-01"),
		CheckOut:    date(t, "2025-06-03"),
		Guests:      2,
		TotalAmount: 300,
	}
}

func TestAllocateAndConfirm(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	p := allocateParams(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id\\s+FROM rooms r").
		WithArgs(p.HotelID, p.RoomType, p.Guests, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(7, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(p.Reference, p.UserID, 7, p.CheckIn, p.CheckOut, p.Guests, p.TotalAmount).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "user_id", "room_id", "check_in", "check_out", "guests", "total_amount", "status", "created_at",
		}).AddRow(1, p.Reference, p.UserID, 7, p.CheckIn, p.CheckOut, p.Guests, p.TotalAmount, StatusConfirmed, now))
	mock.ExpectCommit()

	booking, err := repo.AllocateAndConfirm(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 7, booking.RoomID)
	require.Equal(t, StatusConfirmed, booking.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateAndConfirmNoRoom(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	p := allocateParams(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id\\s+FROM rooms r").
		WithArgs(p.HotelID, p.RoomType, p.Guests, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.AllocateAndConfirm(context.Background(), p)
	require.ErrorIs(t, err, ErrNoRoomAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A finalizer that wakes from a FOR UPDATE wait after a concurrent booking
// committed sees the conflict only in the fresh-statement recheck; it must
// rescan and land on the next room instead of double-booking the first.
func TestAllocateAndConfirmRescansAfterLockWaitConflict(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	p := allocateParams(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id\\s+FROM rooms r").
		WithArgs(p.HotelID, p.RoomType, p.Guests, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(7, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT r.id\\s+FROM rooms r").
		WithArgs(p.HotelID, p.RoomType, p.Guests, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(8, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(p.Reference, p.UserID, 8, p.CheckIn, p.CheckOut, p.Guests, p.TotalAmount).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "user_id", "room_id", "check_in", "check_out", "guests", "total_amount", "status", "created_at",
		}).AddRow(2, p.Reference, p.UserID, 8, p.CheckIn, p.CheckOut, p.Guests, p.TotalAmount, StatusConfirmed, now))
	mock.ExpectCommit()

	booking, err := repo.AllocateAndConfirm(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 8, booking.RoomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// When every room that survives the rescan is gone, the loop ends in
// ErrNoRoomAvailable rather than inserting over the conflict.
func TestAllocateAndConfirmConflictThenNoRoom(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	p := allocateParams(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id\\s+FROM rooms r").
		WithArgs(p.HotelID, p.RoomType, p.Guests, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(7, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT r.id\\s+FROM rooms r").
		WithArgs(p.HotelID, p.RoomType, p.Guests, p.CheckIn, p.CheckOut).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.AllocateAndConfirm(context.Background(), p)
	require.ErrorIs(t, err, ErrNoRoomAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingByReference(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery("SELECT id, reference, user_id, room_id").
		WithArgs("BK-20250601-3FA9").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "user_id", "room_id", "check_in", "check_out", "guests", "total_amount", "status", "created_at",
		}).AddRow(1, "BK-20250601-3FA9", 42, 7, now, now.Add(48*time.Hour), 2, 300.0, StatusConfirmed, now))

	booking, err := repo.GetBookingByReference(context.Background(), "BK-20250601-3FA9")
	require.NoError(t, err)
	require.Equal(t, 42, booking.UserID)

	mock.ExpectQuery("SELECT id, reference, user_id, room_id").
		WithArgs("BK-MISSING").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetBookingByReference(context.Background(), "BK-MISSING")
	require.ErrorIs(t, err, ErrBookingNotFound)
}
