package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix     = "availability_lock:"
	quantityKeyPrefix = "locked_quantity:"
)

// reserveScript is the single serialization point for check-and-reserve.
// Reading the counter, comparing headroom and incrementing must happen in
// one round trip, otherwise two callers can both pass the comparison before
// either increments and oversubscribe the scope.
//
// KEYS[1]: scope counter key
// ARGV[1]: quantity requested
// ARGV[2]: free room count from persisted data
// ARGV[3]: counter TTL in seconds
//
// Returns {1, locked} on success, {0, locked} when headroom is insufficient,
// where locked is the counter value observed before the attempt.
const reserveScriptSrc = `
local locked = tonumber(redis.call('GET', KEYS[1]) or '0')
local qty = tonumber(ARGV[1])
local free = tonumber(ARGV[2])
if free - locked < qty then
	return {0, locked}
end
redis.call('INCRBY', KEYS[1], qty)
redis.call('EXPIRE', KEYS[1], ARGV[3])
return {1, locked}
`

var reserveScript = redis.NewScript(reserveScriptSrc)

// releaseScript decrements and deletes the key at zero in one round trip so
// a concurrent reserve can never observe a stale zero-valued counter.
//
// KEYS[1]: scope counter key
// ARGV[1]: quantity to release
const releaseScriptSrc = `
local left = redis.call('DECRBY', KEYS[1], ARGV[1])
if left <= 0 then
	redis.call('DEL', KEYS[1])
end
return left
`

var releaseScript = redis.NewScript(releaseScriptSrc)

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func lockKey(lockID string) string {
	return lockKeyPrefix + lockID
}

func counterKey(scope Scope) string {
	return fmt.Sprintf("%s%d:%s:%s:%s", quantityKeyPrefix, scope.HotelID, scope.RoomType, scope.CheckIn, scope.CheckOut)
}

func (s *redisStore) SaveLock(ctx context.Context, lock *Lock, ttl time.Duration) error {
	data, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("failed to marshal lock: %w", err)
	}

	if err := s.client.Set(ctx, lockKey(lock.LockID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store lock: %w", err)
	}

	return nil
}

func (s *redisStore) GetLock(ctx context.Context, lockID string) (*Lock, error) {
	data, err := s.client.Get(ctx, lockKey(lockID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lock: %w", err)
	}

	var lock Lock
	if err := json.Unmarshal([]byte(data), &lock); err != nil {
		return nil, fmt.Errorf("corrupt lock record %s: %w", lockID, err)
	}

	return &lock, nil
}

func (s *redisStore) TakeLock(ctx context.Context, lockID string) (*Lock, error) {
	data, err := s.client.GetDel(ctx, lockKey(lockID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take lock: %w", err)
	}

	var lock Lock
	if err := json.Unmarshal([]byte(data), &lock); err != nil {
		return nil, fmt.Errorf("corrupt lock record %s: %w", lockID, err)
	}

	return &lock, nil
}

func (s *redisStore) LockTTL(ctx context.Context, lockID string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, lockKey(lockID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to query lock ttl: %w", err)
	}
	return ttl, nil
}

func (s *redisStore) ExtendLock(ctx context.Context, lockID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.Expire(ctx, lockKey(lockID), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to extend lock: %w", err)
	}
	return ok, nil
}

func (s *redisStore) ReserveQuantity(ctx context.Context, scope Scope, quantity, free int, ttl time.Duration) (bool, int, error) {
	res, err := reserveScript.Eval(ctx, s.client,
		[]string{counterKey(scope)},
		quantity, free, int(ttl.Seconds()),
	).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to reserve quantity: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return false, 0, fmt.Errorf("unexpected reserve script result: %v", res)
	}

	reserved, ok1 := vals[0].(int64)
	locked, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected reserve script result types: %v", res)
	}

	return reserved == 1, int(locked), nil
}

func (s *redisStore) ReleaseQuantity(ctx context.Context, scope Scope, quantity int) error {
	if err := releaseScript.Eval(ctx, s.client, []string{counterKey(scope)}, quantity).Err(); err != nil {
		return fmt.Errorf("failed to release quantity: %w", err)
	}
	return nil
}

func (s *redisStore) LockedQuantity(ctx context.Context, scope Scope) (int, error) {
	locked, err := s.client.Get(ctx, counterKey(scope)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read locked quantity: %w", err)
	}
	return locked, nil
}
