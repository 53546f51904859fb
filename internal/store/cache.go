package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "myshop:"

// CachedGateway serves Select from Redis and drops the cached collection of
// an owner whenever that collection is written. A nil client turns it into a
// plain pass-through. Cache failures are logged and never fail the call.
type CachedGateway struct {
	Gateway
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewCachedGateway(next Gateway, client *redis.Client, ttl time.Duration, log *logrus.Logger) *CachedGateway {
	return &CachedGateway{Gateway: next, client: client, ttl: ttl, log: log}
}

func cacheKey(c Collection, ownerID string) string {
	return cacheKeyPrefix + string(c) + ":" + ownerID
}

func (g *CachedGateway) Select(ctx context.Context, c Collection, ownerID string) ([]Row, error) {
	if g.client == nil {
		return g.Gateway.Select(ctx, c, ownerID)
	}

	key := cacheKey(c, ownerID)
	val, err := g.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var rows []Row
		if jerr := json.Unmarshal([]byte(val), &rows); jerr == nil {
			return rows, nil
		}
		g.log.WithField("key", key).Warn("dropping unreadable cache entry")
	case !errors.Is(err, redis.Nil):
		g.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}

	rows, err := g.Gateway.Select(ctx, c, ownerID)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(rows); jerr == nil {
		if serr := g.client.Set(ctx, key, payload, g.ttl).Err(); serr != nil {
			g.log.WithError(serr).WithField("key", key).Warn("cache write failed")
		}
	}
	return rows, nil
}

func (g *CachedGateway) Upsert(ctx context.Context, c Collection, rows []Row) error {
	err := g.Gateway.Upsert(ctx, c, rows)
	g.invalidateRows(ctx, c, rows)
	return err
}

func (g *CachedGateway) Insert(ctx context.Context, c Collection, rows []Row) error {
	err := g.Gateway.Insert(ctx, c, rows)
	g.invalidateRows(ctx, c, rows)
	return err
}

func (g *CachedGateway) Delete(ctx context.Context, c Collection, ownerID string, ids []string) error {
	err := g.Gateway.Delete(ctx, c, ownerID, ids)
	g.invalidate(ctx, cacheKey(c, ownerID))
	return err
}

func (g *CachedGateway) DeleteAll(ctx context.Context, c Collection, ownerID string) error {
	err := g.Gateway.DeleteAll(ctx, c, ownerID)
	g.invalidate(ctx, cacheKey(c, ownerID))
	return err
}

func (g *CachedGateway) invalidateRows(ctx context.Context, c Collection, rows []Row) {
	seen := make(map[string]bool)
	for _, r := range rows {
		owner := r.OwnerID()
		if owner == "" || seen[owner] {
			continue
		}
		seen[owner] = true
		g.invalidate(ctx, cacheKey(c, owner))
	}
}

func (g *CachedGateway) invalidate(ctx context.Context, keys ...string) {
	if g.client == nil || len(keys) == 0 {
		return
	}
	if err := g.client.Del(ctx, keys...).Err(); err != nil {
		g.log.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}
