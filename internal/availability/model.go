package availability

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultLockTTL bounds the lifetime of an availability lock. A lock that
// is neither released nor consumed by a booking disappears when its TTL
// runs out, and the scope counter it contributed to expires with it.
const DefaultLockTTL = 120 * time.Second

// Lock is a short-lived claim on a quantity of rooms of one type and date
// range. Dates are kept as YYYY-MM-DD strings so that lock/booking matching
// is an exact string comparison, same as the stored JSON.
type Lock struct {
	LockID    string    `json:"lock_id"`
	HotelID   int       `json:"hotel_id"`
	RoomType  string    `json:"room_type"`
	CheckIn   string    `json:"check_in_date"`
	CheckOut  string    `json:"check_out_date"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Scope identifies the counter a lock's quantity is charged against.
func (l *Lock) Scope() Scope {
	return Scope{
		HotelID:  l.HotelID,
		RoomType: l.RoomType,
		CheckIn:  l.CheckIn,
		CheckOut: l.CheckOut,
	}
}

// Scope is the (hotel, room type, date range) tuple that keys a
// LockedQuantity counter.
type Scope struct {
	HotelID  int
	RoomType string
	CheckIn  string
	CheckOut string
}

// LockStatus is a lock plus its remaining TTL.
type LockStatus struct {
	Lock
	TTLSeconds int `json:"ttl_seconds"`
}

type CreateLockRequest struct {
	HotelID  int    `json:"hotel_id" binding:"required" validate:"required,gt=0"`
	RoomType string `json:"room_type" binding:"required" validate:"required"`
	CheckIn  string `json:"check_in_date" binding:"required" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out_date" binding:"required" validate:"required,datetime=2006-01-02"`
	Quantity int    `json:"quantity" binding:"required" validate:"required,min=1,max=10"`
}

type CreateLockResponse struct {
	Lock
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

type ReleaseLockRequest struct {
	LockID string `json:"lock_id" binding:"required" validate:"required"`
}

type ReleaseLockResponse struct {
	LockID   string `json:"lock_id"`
	Released bool   `json:"released"`
	Message  string `json:"message"`
}

type LockStatusResponse struct {
	LockID     string `json:"lock_id"`
	Exists     bool   `json:"exists"`
	HotelID    int    `json:"hotel_id,omitempty"`
	RoomType   string `json:"room_type,omitempty"`
	CheckIn    string `json:"check_in_date,omitempty"`
	CheckOut   string `json:"check_out_date,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// newLockID returns "lock_" plus 32 hex characters, the id format the
// booking checkout flow has always used.
func newLockID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails if the OS entropy source is broken
		panic(fmt.Sprintf("availability: cannot generate lock id: %v", err))
	}
	return "lock_" + hex.EncodeToString(buf)
}
