package store

import (
	"context"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Backend is what the server and the CLI need from a configured store.
type Backend struct {
	Gateway Gateway
	Users   UserRepository
	closers []io.Closer
}

// Options selects and tunes the store.
type Options struct {
	Driver    string // "mysql", "sqlite" or "memory"
	DSN       string
	RedisAddr string // empty disables the read cache
	CacheTTL  time.Duration
}

// Open builds the gateway for the configured driver, wrapped with the Redis
// read cache when an address is set and reachable.
func Open(ctx context.Context, opts Options, log *logrus.Logger) (*Backend, error) {
	b := &Backend{}

	var gw Gateway
	switch opts.Driver {
	case "memory":
		m := NewMemoryStore()
		gw, b.Users = m, m
	default:
		s, err := OpenGorm(opts.Driver, opts.DSN, log)
		if err != nil {
			return nil, err
		}
		gw, b.Users = s, s
		b.closers = append(b.closers, s)
	}

	var client *redis.Client
	if opts.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).WithField("addr", opts.RedisAddr).Warn("redis unavailable, read cache disabled")
			client.Close()
			client = nil
		} else {
			log.WithField("addr", opts.RedisAddr).Info("connected to redis")
			b.closers = append(b.closers, client)
		}
	}

	b.Gateway = NewCachedGateway(gw, client, opts.CacheTTL, log)
	return b, nil
}

func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
