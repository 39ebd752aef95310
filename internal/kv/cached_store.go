package kv

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 1024,
	}
}

type MetricsSnapshot struct {
	Hits           uint64
	Misses         uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type metrics struct {
	hits           atomic.Uint64
	misses         atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

// CachedStore is a read-through cache over an origin store. It serves
// artifact consumers; durability checks must read the origin directly, since
// a cache hit says nothing about store visibility.
type CachedStore struct {
	origin  Store
	cache   *expirable.LRU[string, []byte]
	metrics metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin: origin,
		cache:  expirable.NewLRU[string, []byte](cfg.MaxEntries, nil, cfg.TTL),
	}
}

// Origin exposes the uncached store for callers that need real reads.
func (s *CachedStore) Origin() Store {
	if s == nil {
		return nil
	}
	return s.origin
}

func (s *CachedStore) Put(ctx context.Context, key string, value []byte) error {
	s.metrics.originWrites.Add(1)
	if err := s.origin.Put(ctx, key, value); err != nil {
		s.metrics.originWriteErr.Add(1)
		return err
	}
	copied := append([]byte(nil), value...)
	s.cache.Add(strings.TrimSpace(key), copied)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	trimmed := strings.TrimSpace(key)
	if raw, ok := s.cache.Get(trimmed); ok {
		s.metrics.hits.Add(1)
		return append([]byte(nil), raw...), nil
	}
	s.metrics.misses.Add(1)
	s.metrics.originReads.Add(1)

	raw, err := s.origin.Get(ctx, key)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]byte(nil), raw...)
	s.cache.Add(trimmed, copied)
	return append([]byte(nil), copied...), nil
}

// List always hits the origin; listings change under concurrent writers and
// are not worth caching for this workload.
func (s *CachedStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.metrics.originReads.Add(1)
	out, err := s.origin.List(ctx, prefix)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	return out, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:           s.metrics.hits.Load(),
		Misses:         s.metrics.misses.Load(),
		OriginReads:    s.metrics.originReads.Load(),
		OriginWrites:   s.metrics.originWrites.Load(),
		OriginReadErr:  s.metrics.originReadErr.Load(),
		OriginWriteErr: s.metrics.originWriteErr.Load(),
	}
}
