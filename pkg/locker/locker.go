// Package locker provides the ports.Locker implementations: a Redis-backed
// lock shared by every instance, and an in-process one for single-instance runs.
package locker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/ports"
)

const keyPrefix = "ricemill:lock:"

// RedisLocker obtains locks through redislock.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

var _ ports.Locker = (*RedisLocker)(nil)

// Obtain does not retry; a held key fails at once with ports.ErrLockNotObtained.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, keyPrefix+key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ports.ErrLockNotObtained
		}
		return nil, err
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// LocalLocker keeps locks in memory. Expired entries are reclaimed on the next Obtain.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localLock
	now   func() time.Time
	token uint64
}

type localLock struct {
	token     uint64
	expiresAt time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLock), now: time.Now}
}

var _ ports.Locker = (*LocalLocker)(nil)

func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expiresAt) {
		return nil, ports.ErrLockNotObtained
	}
	l.token++
	token := l.token
	l.held[key] = localLock{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only the holder may release; a lock that expired and was re-obtained stays.
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}
