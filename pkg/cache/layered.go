package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through a fast first layer backed by a shared second layer.
// Writes go to the second layer first, then the first.
type LayeredCache struct {
	l1    Store
	l2    Store
	l1TTL time.Duration
}

// NewLayeredCache creates a two-level cache, typically memory over Redis.
func NewLayeredCache(l1, l2 Store, opts ...Option) *LayeredCache {
	cfg := newOptions(opts)
	return &LayeredCache{l1: l1, l2: l2, l1TTL: cfg.FirstLayerTTL}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.l1.Set(ctx, key, value, lc.firstLayerTTL(ttl))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := lc.l1.Get(ctx, key); err == nil {
		return v, nil
	}
	v, err := lc.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = lc.l1.Set(ctx, key, v, lc.l1TTL)
	return v, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, _ := lc.l1.Exists(ctx, key); ok {
		return true, nil
	}
	return lc.l2.Exists(ctx, key)
}

func (lc *LayeredCache) Ping(ctx context.Context) error {
	return lc.l2.Ping(ctx)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	return errors.Join(lc.l1.Close(), lc.l2.Close())
}

func (lc *LayeredCache) firstLayerTTL(ttl time.Duration) time.Duration {
	if ttl > 0 && ttl < lc.l1TTL {
		return ttl
	}
	return lc.l1TTL
}
