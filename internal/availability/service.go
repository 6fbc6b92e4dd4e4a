package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staylock/internal/hotel"
	"staylock/internal/logger"
	"staylock/internal/metrics"
)

var (
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("check-out date must be after check-in date")
	ErrCheckInPast      = errors.New("check-in date cannot be in the past")
	ErrInvalidRoomType  = errors.New("invalid room type")
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 10")
	ErrHotelNotFound    = errors.New("hotel not found")
)

// IsValidationError reports whether err is a request validation failure as
// opposed to a capacity or infrastructure problem.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrCheckInPast) ||
		errors.Is(err, ErrInvalidRoomType) ||
		errors.Is(err, ErrInvalidQuantity)
}

// CapacityError reports insufficient headroom with the exact numbers the
// caller needs to adjust the request.
type CapacityError struct {
	Requested int
	Available int
	Total     int
	Locked    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf(
		"insufficient rooms available: requested %d, available %d (total %d, locked %d)",
		e.Requested, e.Available, e.Total, e.Locked,
	)
}

// Manager issues, queries, extends and releases quantity locks. Lifecycle
// of a lock: created, then gone — by explicit release, by consumption
// through a booking, or by TTL expiry. There are no other states.
type Manager interface {
	CreateLock(ctx context.Context, req CreateLockRequest) (*Lock, time.Time, error)
	// ReleaseLock is idempotent: a missing (or already expired) lock
	// returns false without error and without touching any counter.
	// Callers classify the outcome for metrics: an explicit release and a
	// lock consumed by a booking are different events over the same counter.
	ReleaseLock(ctx context.Context, lockID string) (bool, error)
	// GetLockStatus returns (nil, nil) when the lock does not exist.
	GetLockStatus(ctx context.Context, lockID string) (*LockStatus, error)
	// ExtendLock resets the lock record's TTL; ttl <= 0 means the default.
	ExtendLock(ctx context.Context, lockID string, ttl time.Duration) (bool, error)
	// LockedQuantity reports the scope counter for availability search.
	LockedQuantity(ctx context.Context, scope Scope) (int, error)
	// TTL returns the lock lifetime the manager was configured with.
	TTL() time.Duration
}

type manager struct {
	store  Store
	hotels hotel.Service
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, hotels hotel.Service, ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &manager{
		store:  store,
		hotels: hotels,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *manager) TTL() time.Duration {
	return m.ttl
}

func (m *manager) CreateLock(ctx context.Context, req CreateLockRequest) (*Lock, time.Time, error) {
	checkIn, checkOut, roomType, err := m.validate(req)
	if err != nil {
		return nil, time.Time{}, err
	}

	if _, err := m.hotels.GetHotelByID(ctx, req.HotelID); err != nil {
		if errors.Is(err, hotel.ErrHotelNotFound) {
			return nil, time.Time{}, ErrHotelNotFound
		}
		return nil, time.Time{}, fmt.Errorf("failed to verify hotel: %w", err)
	}

	free, err := m.hotels.FreeCount(ctx, req.HotelID, roomType, checkIn, checkOut)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to compute free rooms: %w", err)
	}

	scope := Scope{
		HotelID:  req.HotelID,
		RoomType: string(roomType),
		CheckIn:  checkIn.Format(hotel.DateLayout),
		CheckOut: checkOut.Format(hotel.DateLayout),
	}

	reserved, locked, err := m.store.ReserveQuantity(ctx, scope, req.Quantity, free, m.ttl)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !reserved {
		metrics.RecordCapacityRejection()
		return nil, time.Time{}, &CapacityError{
			Requested: req.Quantity,
			Available: free - locked,
			Total:     free,
			Locked:    locked,
		}
	}

	now := m.now().UTC()
	lock := &Lock{
		LockID:    newLockID(),
		HotelID:   scope.HotelID,
		RoomType:  scope.RoomType,
		CheckIn:   scope.CheckIn,
		CheckOut:  scope.CheckOut,
		Quantity:  req.Quantity,
		CreatedAt: now,
	}

	if err := m.store.SaveLock(ctx, lock, m.ttl); err != nil {
		// The quantity was already reserved; hand it back so the counter
		// does not sit inflated until the TTL clears it.
		if relErr := m.store.ReleaseQuantity(ctx, scope, req.Quantity); relErr != nil {
			logger.Error("failed to roll back reserved quantity", "scope", scope, "error", relErr)
		}
		return nil, time.Time{}, err
	}

	metrics.RecordLockCreated()
	logger.Info("availability lock created",
		"lock_id", lock.LockID,
		"hotel_id", lock.HotelID,
		"room_type", lock.RoomType,
		"quantity", lock.Quantity,
	)

	return lock, now.Add(m.ttl), nil
}

func (m *manager) validate(req CreateLockRequest) (checkIn, checkOut time.Time, roomType hotel.RoomType, err error) {
	checkIn, err = hotel.ParseDate(req.CheckIn)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: check-in %q", ErrInvalidDate, req.CheckIn)
	}

	checkOut, err = hotel.ParseDate(req.CheckOut)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: check-out %q", ErrInvalidDate, req.CheckOut)
	}

	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, "", ErrInvalidDateRange
	}

	now := m.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return time.Time{}, time.Time{}, "", ErrCheckInPast
	}

	roomType, err = hotel.ParseRoomType(req.RoomType)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: %s (valid: single, double, deluxe, suite, family)", ErrInvalidRoomType, req.RoomType)
	}

	if req.Quantity < 1 || req.Quantity > 10 {
		return time.Time{}, time.Time{}, "", ErrInvalidQuantity
	}

	return checkIn, checkOut, roomType, nil
}

func (m *manager) ReleaseLock(ctx context.Context, lockID string) (bool, error) {
	// TakeLock removes the record atomically, so of two concurrent releases
	// only one gets the lock back and decrements the counter.
	lock, err := m.store.TakeLock(ctx, lockID)
	if err != nil {
		return false, err
	}
	if lock == nil {
		return false, nil
	}

	if err := m.store.ReleaseQuantity(ctx, lock.Scope(), lock.Quantity); err != nil {
		return false, err
	}

	logger.Info("availability lock released", "lock_id", lockID, "quantity", lock.Quantity)

	return true, nil
}

func (m *manager) GetLockStatus(ctx context.Context, lockID string) (*LockStatus, error) {
	lock, err := m.store.GetLock(ctx, lockID)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return nil, nil
	}

	ttl, err := m.store.LockTTL(ctx, lockID)
	if err != nil {
		return nil, err
	}

	seconds := int(ttl.Seconds())
	if seconds < 0 {
		seconds = 0
	}

	return &LockStatus{Lock: *lock, TTLSeconds: seconds}, nil
}

func (m *manager) ExtendLock(ctx context.Context, lockID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}

	extended, err := m.store.ExtendLock(ctx, lockID, ttl)
	if err != nil {
		return false, err
	}

	if extended {
		metrics.RecordLockExtended()
	}

	return extended, nil
}

func (m *manager) LockedQuantity(ctx context.Context, scope Scope) (int, error) {
	return m.store.LockedQuantity(ctx, scope)
}
