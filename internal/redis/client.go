package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config describes the Redis instance holding the account read model and
// event stream.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Client is a verified connection pool. The embedded client is handed to
// ViewCache and the event publisher.
type Client struct {
	*goredis.Client
}

// NewClient dials Redis and pings it within ctx. The pool is closed again if
// the ping fails.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return &Client{Client: rdb}, nil
}
