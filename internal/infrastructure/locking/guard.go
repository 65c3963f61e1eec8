// Package locking keeps periodic jobs single-flight across replicas.
package locking

import (
	"context"
	"errors"
	"time"

	"automarket/internal/logger"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

type releaseFunc func(ctx context.Context) error

type obtainFunc func(ctx context.Context, key string, ttl time.Duration) (releaseFunc, error)

// Guard runs a function only while holding a Redis lock. A tick that cannot
// obtain the lock is skipped, not queued.
type Guard struct {
	obtain obtainFunc
	log    *logrus.Logger
}

func NewGuard(client redislock.RedisClient, log *logrus.Logger) *Guard {
	locker := redislock.New(client)
	return &Guard{
		obtain: func(ctx context.Context, key string, ttl time.Duration) (releaseFunc, error) {
			lock, err := locker.Obtain(ctx, key, ttl, nil)
			if err != nil {
				return nil, err
			}
			return lock.Release, nil
		},
		log: logger.OrDiscard(log),
	}
}

// Run reports whether fn ran. Losing the race to another holder is not an error.
func (g *Guard) Run(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error) {
	release, err := g.obtain(ctx, key, ttl)
	if errors.Is(err, redislock.ErrNotObtained) {
		g.log.WithFields(logrus.Fields{"module": "locking", "key": key}).Debug("lock held elsewhere, skipping")
		return false, nil
	}
	if err != nil {
		logger.LogError(g.log, "locking", "obtain", "could not obtain lock", key, err)
		return false, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.LogError(g.log, "locking", "release", "could not release lock", key, err)
		}
	}()
	return true, fn(ctx)
}
