// Package redis opens the client backing the mail outbox.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName  = "yamdb-api"
	pingTimeout = 5 * time.Second
)

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	// DialTimeout bounds both dialing and the startup ping. Zero means 5s.
	DialTimeout time.Duration
}

func (c Config) options() *redis.Options {
	timeout := c.DialTimeout
	if timeout <= 0 {
		timeout = pingTimeout
	}
	return &redis.Options{
		Addr:        c.Addr,
		Password:    c.Password,
		DB:          c.DB,
		PoolSize:    c.PoolSize,
		ClientName:  clientName,
		DialTimeout: timeout,
	}
}

// Connect returns a client that has answered PING, or closes it and reports
// why it could not.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s db %d: ping: %w", cfg.Addr, cfg.DB, err)
	}
	return rdb, nil
}
