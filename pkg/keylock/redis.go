package keylock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

const (
	defaultTTL  = 10 * time.Second
	defaultWait = 5 * time.Second
	pollEvery   = 25 * time.Millisecond
)

// ErrTimeout is returned when a key stays held past the wait budget.
var ErrTimeout = errors.New("keylock: timed out waiting for lock")

// remote obtains a cross-replica lock on an already namespaced key.
type remote interface {
	obtain(ctx context.Context, key string) (Release, error)
}

// Redis implements Locker with redislock, which stores a random owner token
// under a TTL so a replica never frees a lock that expired and was taken by
// someone else. Waiters in the same process queue on a Local first.
type Redis struct {
	remote remote
	keyFn  func(string) string
	local  *Local
	wait   time.Duration
}

// NewRedis constructs a Redis-backed locker. keyFn maps a store name to its
// Redis key; nil uses the name as is.
func NewRedis(client redislock.RedisClient, keyFn func(string) string, ttl, wait time.Duration) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return newRedis(redislockRemote{client: redislock.New(client), ttl: ttl}, keyFn, wait), nil
}

func newRedis(r remote, keyFn func(string) string, wait time.Duration) *Redis {
	if keyFn == nil {
		keyFn = func(key string) string { return key }
	}
	if wait <= 0 {
		wait = defaultWait
	}
	return &Redis{remote: r, keyFn: keyFn, local: NewLocal(), wait: wait}
}

// Lock retries until the key is owned, the wait budget runs out or ctx ends.
func (r *Redis) Lock(ctx context.Context, key string) (Release, error) {
	ctx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()

	releaseLocal, err := r.local.Lock(ctx, key)
	if err != nil {
		return nil, waitErr(err)
	}

	releaseRemote, err := r.remote.obtain(ctx, r.keyFn(key))
	if err != nil {
		_ = releaseLocal(ctx)
		return nil, waitErr(err)
	}

	return func(ctx context.Context) error {
		defer releaseLocal(ctx)
		return releaseRemote(ctx)
	}, nil
}

type redislockRemote struct {
	client *redislock.Client
	ttl    time.Duration
}

func (r redislockRemote) obtain(ctx context.Context, key string) (Release, error) {
	lock, err := r.client.Obtain(ctx, key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(pollEvery),
	})
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}, nil
}

func waitErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redislock.ErrNotObtained) {
		return ErrTimeout
	}
	return err
}
