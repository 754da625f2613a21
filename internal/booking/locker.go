package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes admission for a single room.  Lock blocks until the
// room is free or ctx is done and returns the function releasing it.
type Locker interface {
	Lock(ctx context.Context, roomID uint64) (unlock func(), err error)
}

// KeyedMutex is an in-process Locker holding one mutex per room.  Entries
// are dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	rooms map[uint64]*roomSlot
}

type roomSlot struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{rooms: make(map[uint64]*roomSlot)}
}

// Lock acquires roomID's slot.  It fails with ErrConcurrencyConflict when
// ctx expires while waiting.
func (k *KeyedMutex) Lock(ctx context.Context, roomID uint64) (func(), error) {
	k.mu.Lock()
	slot, ok := k.rooms[roomID]
	if !ok {
		slot = &roomSlot{ch: make(chan struct{}, 1)}
		k.rooms[roomID] = slot
	}
	slot.refs++
	k.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(roomID, slot)
		return nil, fmt.Errorf("%w: waiting for room %d: %w", ErrConcurrencyConflict, roomID, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			k.release(roomID, slot)
		})
	}, nil
}

func (k *KeyedMutex) release(roomID uint64, slot *roomSlot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(k.rooms, roomID)
	}
}

// RedisLocker is a Locker shared by every process talking to the same
// Redis.  Each hold stores a random token under the room key with a TTL so
// a crashed holder cannot block the room forever.
type RedisLocker struct {
	rdb   *redis.Client
	ttl   time.Duration
	retry time.Duration
	pfx   string
}

// Defaults for RedisLocker.
const (
	DefaultLockTTL   = 10 * time.Second
	DefaultLockRetry = 25 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// NewRedisLocker returns a RedisLocker.  Zero durations use the defaults.
func NewRedisLocker(rdb *redis.Client, prefix string, ttl, retry time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if retry <= 0 {
		retry = DefaultLockRetry
	}
	if prefix == "" {
		prefix = "booking:lock"
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, retry: retry, pfx: prefix}
}

func (l *RedisLocker) key(roomID uint64) string {
	return fmt.Sprintf("%s:room:%d", l.pfx, roomID)
}

// Lock polls SET NX until it wins or ctx is done.  Redis errors surface as
// ErrStoreUnavailable, an expired wait as ErrConcurrencyConflict.
func (l *RedisLocker) Lock(ctx context.Context, roomID uint64) (func(), error) {
	key := l.key(roomID)
	token := uuid.NewString()
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		switch {
		case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)):
			return nil, fmt.Errorf("%w: waiting for room %d: %w", ErrConcurrencyConflict, roomID, err)
		case err != nil:
			return nil, fmt.Errorf("%w: room lock: %w", ErrStoreUnavailable, err)
		case ok:
			return l.unlocker(key, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for room %d: %w", ErrConcurrencyConflict, roomID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlocker(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			// The key expires on its own if this fails.
			_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
		})
	}
}
