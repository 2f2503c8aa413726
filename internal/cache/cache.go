// Package cache implements the cache layer described in spec §4.H
// (component H): a stable hash of normalized filters+page+limit+kind
// maps to cached JSON, with per-kind TTLs and prefix invalidation.
// Backed by Redis only; there is no in-process tier. Adapted from the pack's redis cache wrapper
// (bisosad1501-ecom-golang-clean-architecture) but rebuilt on
// redis/go-redis/v9. Cache failures are always swallowed and logged,
// never surfaced as request errors (spec §7 kind 3).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brandeduk/catalog-search/internal/metrics"
)

// ErrMiss is returned by Get when the key is absent; callers treat it
// as a cache miss, never as a failure.
var ErrMiss = errors.New("cache miss")

// Cache is the contract consumed by the catalog service. It never
// returns errors that should fail a request — Get/Set/InvalidateByPrefix
// log and return ErrMiss/nil on any backend failure.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateByPrefix(ctx context.Context, prefix string) error
}

// Redis is the Cache implementation backed by go-redis/v9.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedis builds a Redis-backed cache from a connection URL.
func NewRedis(redisURL string, logger zerolog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts), logger: logger}, nil
}

// Get fetches and JSON-decodes a value. A miss returns ErrMiss without
// logging; any other backend or decode error is logged at warn and
// also returns ErrMiss, so callers always treat it as "go compute it".
func (r *Redis) Get(ctx context.Context, key string, dest any) error {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.CacheErrors.WithLabelValues("get").Inc()
			r.logger.Warn().Err(err).Str("key", key).Msg("cache get failed, treating as miss")
		}
		return ErrMiss
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		metrics.CacheErrors.WithLabelValues("decode").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("cache value decode failed, treating as miss")
		return ErrMiss
	}
	return nil
}

// Set JSON-encodes and stores a value with the given TTL. Failures are
// logged and swallowed.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache value encode failed, skipping set")
		return nil
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("cache set failed, ignoring")
	}
	return nil
}

// InvalidateByPrefix evicts every key under a prefix, used by the
// admin cache-invalidate trigger (spec §6).
func (r *Redis) InvalidateByPrefix(ctx context.Context, prefix string) error {
	pattern := prefix + "*"
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("scan").Inc()
		r.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache scan failed during invalidation")
		return nil
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("del").Inc()
		r.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache delete failed during invalidation")
	}
	return nil
}

// Kind enumerates the cache namespaces and their default TTLs from
// spec §4.H.
type Kind string

const (
	KindListing      Kind = "products"
	KindAggregations Kind = "aggregations"
	KindCount        Kind = "count"
	KindPriceRange   Kind = "priceRange"
	KindDetail       Kind = "product"
)

// NormalizedFilters is the canonical, order-independent representation
// of a request's filter set, used as cache-key input. Keys are the
// filter dimension name; values are already lower/slug-cased and
// sorted.
type NormalizedFilters map[string][]string

// Normalize drops nullish/empty entries, sorts keys, and sorts each
// value slice's members, per spec §4.H.
func Normalize(raw map[string][]string) NormalizedFilters {
	out := make(NormalizedFilters)
	for k, vs := range raw {
		if len(vs) == 0 {
			continue
		}
		filtered := make([]string, 0, len(vs))
		for _, v := range vs {
			v = strings.TrimSpace(v)
			if v != "" {
				filtered = append(filtered, v)
			}
		}
		if len(filtered) == 0 {
			continue
		}
		sort.Strings(filtered)
		out[k] = filtered
	}
	return out
}

// Key builds the canonical "k:v|…|page:P|limit:L|type:T" encoding,
// hashes it to a stable 32-bit integer, and prefixes it with the kind.
func Key(kind Kind, filters NormalizedFilters, page, limit int, extra ...string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k, strings.Join(filters[k], ",")))
	}
	parts = append(parts, fmt.Sprintf("page:%d", page), fmt.Sprintf("limit:%d", limit), fmt.Sprintf("type:%s", kind))
	parts = append(parts, extra...)

	canonical := strings.Join(parts, "|")

	h := fnv.New32a()
	_, _ = h.Write([]byte(canonical))
	hashed := strconv.FormatUint(uint64(h.Sum32()), 10)

	return string(kind) + ":" + hashed
}
