// Package cache puts a Redis query-result cache in front of a content store.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"propfinder/server/internal/models"
	"propfinder/server/internal/querybuilder"
	"propfinder/server/internal/store"
)

const defaultPrefix = "propfinder:rows"

// RedisStore caches fetched rows per plan for a fixed TTL. Entries of a
// market are dropped with Invalidate whenever that market's content changes.
// Cache failures are logged and fall through to the wrapped store.
type RedisStore struct {
	next   store.Store
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger
}

func NewRedisStore(next store.Store, client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisStore{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: defaultPrefix,
		logger: logger,
	}
}

func (c *RedisStore) Fetch(ctx context.Context, plan querybuilder.Plan) ([]models.Row, error) {
	key := c.key(plan)
	log := c.logger.WithFields(logrus.Fields{"market": plan.Market, "key": key})

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rows []models.Row
		if err := json.Unmarshal(data, &rows); err == nil {
			log.Debug("Row cache hit")
			return rows, nil
		}
		log.Warn("Discarding unreadable cache entry")
	case err != redis.Nil:
		log.WithError(err).Warn("Row cache lookup failed")
	}

	rows, err := c.next.Fetch(ctx, plan)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rows); err != nil {
		log.WithError(err).Warn("Failed to encode rows for cache")
	} else if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.WithError(err).Warn("Failed to store rows in cache")
	}
	return rows, nil
}

// Invalidate drops every cached plan of a market and returns how many
// entries were removed.
func (c *RedisStore) Invalidate(ctx context.Context, market models.Market) (int, error) {
	pattern := fmt.Sprintf("%s:%s:*", c.prefix, market)
	removed := 0

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	if len(batch) > 0 {
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}

	c.logger.WithFields(logrus.Fields{"market": market, "removed": removed}).Info("Invalidated row cache")
	return removed, nil
}

func (c *RedisStore) key(plan querybuilder.Plan) string {
	hash := md5.Sum([]byte(fmt.Sprintf("%s|%s|%d", plan.Table, plan.Describe(), plan.Limit)))
	return fmt.Sprintf("%s:%s:%s", c.prefix, plan.Market, hex.EncodeToString(hash[:]))
}
