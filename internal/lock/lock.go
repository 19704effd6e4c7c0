// Package lock provides mutual exclusion keyed by string, used to serialize
// booking creation per property.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisLocker is a distributed lock shared by every API instance talking to
// the same Redis.
type RedisLocker struct {
	rs     *redsync.Redsync
	prefix string
	expiry time.Duration
}

// NewRedisLocker returns a locker on client.  Locks expire after expiry
// even if never released, so a crashed holder cannot wedge a property.
func NewRedisLocker(client *redis.Client, expiry time.Duration) *RedisLocker {
	if expiry <= 0 {
		expiry = 10 * time.Second
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		prefix: "spacelink:lock:",
		expiry: expiry,
	}
}

// Lock blocks until key is held or the retry budget runs out.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	m := l.rs.NewMutex(l.prefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(32),
		redsync.WithRetryDelay(100*time.Millisecond),
	)
	if err := m.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	return func() {
		// Release with a fresh context; the request may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = m.UnlockContext(ctx)
	}, nil
}

// LocalLocker serializes within one process.  It is the fallback when Redis
// is unavailable; the database row lock still guards against other
// instances.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]*entry{}}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-ctx.Done():
		// The goroutine still takes the lock eventually; hand it back.
		go func() {
			<-acquired
			l.release(key, e)
		}()
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(key, e) }) }, nil
}

func (l *LocalLocker) release(key string, e *entry) {
	e.mu.Unlock()
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
