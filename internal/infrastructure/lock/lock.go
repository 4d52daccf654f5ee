// Package lock provides the per-tenant run locks that keep reconciliation
// passes from overlapping. The Redis-backed locker coordinates across
// instances; the local locker covers single-instance deployments without
// Redis.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	apprecon "github.com/packhouse/backend/internal/application/reconciliation"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "packhouse:reconciliation:run:"

// RedisRunLocker serializes runs across process instances using Redis locks
type RedisRunLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisRunLocker creates a locker over the given Redis client. ttl bounds
// how long a crashed holder can block a tenant and must not be shorter than
// the run timeout.
func NewRedisRunLocker(rdb *redis.Client, ttl time.Duration) *RedisRunLocker {
	return &RedisRunLocker{client: redislock.New(rdb), ttl: ttl}
}

// Acquire obtains the run lock for the given tenant key
func (l *RedisRunLocker) Acquire(ctx context.Context, key string) (apprecon.RunLock, error) {
	lock, err := l.client.Obtain(ctx, lockKeyPrefix+key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, reconciliation.ErrRunInProgress
	}
	if err != nil {
		return nil, err
	}
	return &redisRunLock{lock: lock}, nil
}

type redisRunLock struct {
	lock *redislock.Lock
}

// Release frees the lock. A lock already expired counts as released.
func (l *redisRunLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return err
	}
	return nil
}

// LocalRunLocker serializes runs within one process. It guards nothing across
// instances, so it is only suitable when a single instance serves all tenants.
type LocalRunLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalRunLocker creates an in-process locker
func NewLocalRunLocker() *LocalRunLocker {
	return &LocalRunLocker{held: make(map[string]bool)}
}

// Acquire obtains the run lock for the given tenant key
func (l *LocalRunLocker) Acquire(ctx context.Context, key string) (apprecon.RunLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, reconciliation.ErrRunInProgress
	}
	l.held[key] = true
	return &localRunLock{locker: l, key: key}, nil
}

type localRunLock struct {
	locker *LocalRunLocker
	key    string
	once   sync.Once
}

// Release frees the lock. Releasing twice is a no-op.
func (l *localRunLock) Release(ctx context.Context) error {
	l.once.Do(func() {
		l.locker.mu.Lock()
		delete(l.locker.held, l.key)
		l.locker.mu.Unlock()
	})
	return nil
}

// Ensure both lockers implement RunLocker
var (
	_ apprecon.RunLocker = (*RedisRunLocker)(nil)
	_ apprecon.RunLocker = (*LocalRunLocker)(nil)
)
