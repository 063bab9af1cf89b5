// Package matchcache caches ranked match results in Redis.
//
// Entries are keyed by a generation counter that is bumped whenever the item
// collection changes, so a single INCR invalidates every cached result.
// A nil *Cache is valid and never hits.
package matchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/erazemk/lostfound/internal/matching"
)

const (
	keyPrefix     = "lostfound:matches:"
	generationKey = keyPrefix + "gen"
)

// DefaultTTL is used when Options.TTL is zero.
const DefaultTTL = 5 * time.Minute

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache stores match results per item.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis. It returns nil when opts.Addr is empty.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Cache, error) {
	if opts.Addr == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, logger: logger}, nil
}

// NoGeneration is returned by Get when the generation could not be read.
// Put ignores it.
const NoGeneration int64 = -1

// Get returns the cached matches for itemID, if any, and the generation it
// looked under. A miss should be filled by passing that generation to Put
// after loading the items, so a result computed from a snapshot older than
// the latest Invalidate lands under a dead key.
func (c *Cache) Get(ctx context.Context, itemID string) ([]matching.Candidate, int64, bool) {
	if c == nil {
		return nil, NoGeneration, false
	}

	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("match cache unavailable", "error", err)
		return nil, NoGeneration, false
	}

	val, err := c.client.Get(ctx, entryKey(gen, itemID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false
	}
	if err != nil {
		c.logger.Warn("match cache read failed", "item", itemID, "error", err)
		return nil, gen, false
	}

	var matches []matching.Candidate
	if err := json.Unmarshal(val, &matches); err != nil {
		c.logger.Warn("match cache entry corrupt", "item", itemID, "error", err)
		return nil, gen, false
	}
	return matches, gen, true
}

// Put stores matches for itemID under generation gen, as returned by Get.
func (c *Cache) Put(ctx context.Context, gen int64, itemID string, matches []matching.Candidate) {
	if c == nil || gen == NoGeneration {
		return
	}

	data, err := json.Marshal(matches)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, entryKey(gen, itemID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("match cache write failed", "item", itemID, "error", err)
	}
}

// Invalidate drops all cached results.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.logger.Warn("match cache invalidation failed", "error", err)
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func entryKey(gen int64, itemID string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, itemID)
}
