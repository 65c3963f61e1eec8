package locking

import (
	"context"
	"errors"
	"testing"
	"time"

	"automarket/internal/logger"

	"github.com/bsm/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGuard(obtainErr error, released *int) *Guard {
	return &Guard{
		obtain: func(context.Context, string, time.Duration) (releaseFunc, error) {
			if obtainErr != nil {
				return nil, obtainErr
			}
			return func(context.Context) error {
				*released++
				return nil
			}, nil
		},
		log: logger.Discard(),
	}
}

func TestGuard_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("runs and releases", func(t *testing.T) {
		var released, calls int
		ran, err := fakeGuard(nil, &released).Run(ctx, "sweep", time.Minute, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, released)
	})

	t.Run("skips when held elsewhere", func(t *testing.T) {
		var released int
		ran, err := fakeGuard(redislock.ErrNotObtained, &released).Run(ctx, "sweep", time.Minute, func(context.Context) error {
			t.Fatalf("fn must not run without the lock")
			return nil
		})
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Zero(t, released)
	})

	t.Run("surfaces redis errors", func(t *testing.T) {
		var released int
		ran, err := fakeGuard(errors.New("connection refused"), &released).Run(ctx, "sweep", time.Minute, func(context.Context) error { return nil })
		require.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("releases when fn fails", func(t *testing.T) {
		var released int
		boom := errors.New("boom")
		ran, err := fakeGuard(nil, &released).Run(ctx, "sweep", time.Minute, func(context.Context) error { return boom })
		assert.True(t, ran)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, released)
	})
}
