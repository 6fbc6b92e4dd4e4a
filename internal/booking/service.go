package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"staylock/internal/availability"
	"staylock/internal/hotel"
	"staylock/internal/logger"
	"staylock/internal/metrics"
	"staylock/internal/pricing"
)

var (
	ErrLockInvalid        = errors.New("invalid or expired lock")
	ErrLockMismatch       = errors.New("lock parameters do not match booking request")
	ErrPricingUnavailable = errors.New("pricing service unavailable")
)

// Service finalizes bookings. A valid quantity lock is the entry ticket, but
// the database transaction is what actually guarantees the room: the lock
// only keeps the advertised headroom honest while the guest fills in details.
type Service interface {
	CreateBooking(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*Booking, error)
}

type service struct {
	repo    Repository
	locks   availability.Manager
	pricing pricing.Client
	hotels  hotel.Service
}

func NewService(repo Repository, locks availability.Manager, pricingClient pricing.Client, hotels hotel.Service) Service {
	return &service{
		repo:    repo,
		locks:   locks,
		pricing: pricingClient,
		hotels:  hotels,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error) {
	checkIn, err := hotel.ParseDate(req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("%w: check-in %q", availability.ErrInvalidDate, req.CheckIn)
	}
	checkOut, err := hotel.ParseDate(req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: check-out %q", availability.ErrInvalidDate, req.CheckOut)
	}
	if !checkOut.After(checkIn) {
		return nil, availability.ErrInvalidDateRange
	}

	roomType, err := hotel.ParseRoomType(req.RoomType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availability.ErrInvalidRoomType, req.RoomType)
	}

	status, err := s.locks.GetLockStatus(ctx, req.LockID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lock: %w", err)
	}
	if status == nil {
		return nil, ErrLockInvalid
	}

	lock := status.Lock
	if lock.HotelID != req.HotelID ||
		!strings.EqualFold(lock.RoomType, req.RoomType) ||
		lock.CheckIn != req.CheckIn ||
		lock.CheckOut != req.CheckOut {
		return nil, ErrLockMismatch
	}

	occupancy, err := s.hotels.OccupancyRate(ctx, req.HotelID, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("failed to compute occupancy: %w", err)
	}

	// One booking allocates one room regardless of how many the lock held,
	// so the quote is for a single room.
	quote, err := s.pricing.Quote(ctx, pricing.QuoteRequest{
		HotelID:       req.HotelID,
		RoomType:      string(roomType),
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Quantity:      1,
		OccupancyRate: occupancy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}
	if !quote.Available {
		return nil, fmt.Errorf("%w: no rate for the requested dates", ErrPricingUnavailable)
	}

	booking, err := s.repo.AllocateAndConfirm(ctx, AllocateParams{
		Reference:   newBookingReference(time.Now().UTC()),
		UserID:      userID,
		HotelID:     req.HotelID,
		RoomType:    roomType,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      req.Guests,
		TotalAmount: quote.TotalPrice,
	})
	if err != nil {
		if errors.Is(err, ErrNoRoomAvailable) {
			metrics.RecordBooking("allocation_failed")
		}
		return nil, err
	}

	// The booking now holds the room; the advisory lock has done its job.
	// Release the whole lock even if it covered more rooms than this booking
	// consumed. Failure here is only an inflated counter until TTL expiry.
	if _, err := s.locks.ReleaseLock(ctx, req.LockID); err != nil {
		logger.Error("failed to release lock after booking", "lock_id", req.LockID, "error", err)
	}
	metrics.RecordLockReleased("consumed")

	metrics.RecordBooking(booking.Status)
	logger.Info("booking confirmed",
		"reference", booking.Reference,
		"user_id", userID,
		"room_id", booking.RoomID,
		"total_amount", booking.TotalAmount,
	)

	return booking, nil
}

func (s *service) GetBookingByReference(ctx context.Context, reference string) (*Booking, error) {
	return s.repo.GetBookingByReference(ctx, reference)
}

// newBookingReference returns e.g. BK-20250601-3FA9.
func newBookingReference(now time.Time) string {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
