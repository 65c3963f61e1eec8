package database

import (
	"context"
	"fmt"
	"time"

	appconfig "automarket/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens the client shared by the sweep lock and pings it once.
func ConnectRedis(ctx context.Context, cfg appconfig.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 10,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
