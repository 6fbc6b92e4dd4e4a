package availability

import (
	"context"
	"time"
)

// Store is the ephemeral side of the lock manager: lock records and
// per-scope quantity counters with TTLs. Workers run in many processes, so
// all cross-request coordination goes through the store's atomic
// operations; there is no in-process fallback.
type Store interface {
	SaveLock(ctx context.Context, lock *Lock, ttl time.Duration) error
	// GetLock returns (nil, nil) when the lock does not exist or has expired.
	GetLock(ctx context.Context, lockID string) (*Lock, error)
	// TakeLock fetches and deletes the lock record in one atomic store
	// operation, so exactly one of any number of concurrent callers gets
	// the record. Returns (nil, nil) when the lock is already gone.
	TakeLock(ctx context.Context, lockID string) (*Lock, error)
	// LockTTL returns the remaining lifetime, or a negative duration when
	// the lock does not exist.
	LockTTL(ctx context.Context, lockID string) (time.Duration, error)
	// ExtendLock resets the lock record's TTL. Returns false when the lock
	// is gone. The scope counter is deliberately left untouched.
	ExtendLock(ctx context.Context, lockID string, ttl time.Duration) (bool, error)

	// ReserveQuantity atomically compares headroom and increments the scope
	// counter in a single store round trip: given free rooms computed from
	// persisted data, it reserves quantity iff free - locked >= quantity.
	// Returns (reserved, locked quantity observed before the attempt).
	ReserveQuantity(ctx context.Context, scope Scope, quantity, free int, ttl time.Duration) (bool, int, error)
	// ReleaseQuantity decrements the scope counter, deleting the key when
	// it reaches zero or below.
	ReleaseQuantity(ctx context.Context, scope Scope, quantity int) error
	LockedQuantity(ctx context.Context, scope Scope) (int, error)
}
