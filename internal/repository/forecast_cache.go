package repository

import (
	"context"
	"errors"
	"time"

	"LoadCast/internal/domain/models"
	"LoadCast/pkg/cache"
)

type cachedForecast struct {
	PredictedLoad []float64 `json:"predicted_load"`
	ActualLoad    []float64 `json:"actual_load"`
}

// ForecastCache stores forecast results as JSON in a cache.Store.
type ForecastCache struct {
	store cache.Store
	ttl   time.Duration
}

func NewForecastCache(store cache.Store, ttl time.Duration) *ForecastCache {
	return &ForecastCache{store: store, ttl: ttl}
}

func (c *ForecastCache) Get(ctx context.Context, key string) (models.ForecastResult, bool, error) {
	v, err := cache.GetJSON[cachedForecast](ctx, c.store, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return models.ForecastResult{}, false, nil
	}
	if err != nil {
		return models.ForecastResult{}, false, err
	}
	if v.PredictedLoad == nil || len(v.PredictedLoad) != len(v.ActualLoad) {
		return models.ForecastResult{}, false, nil
	}
	return models.ForecastResult{PredictedLoad: v.PredictedLoad, ActualLoad: v.ActualLoad}, true, nil
}

func (c *ForecastCache) Set(ctx context.Context, key string, res models.ForecastResult) error {
	return cache.SetJSON(ctx, c.store, key, cachedForecast{PredictedLoad: res.PredictedLoad, ActualLoad: res.ActualLoad}, c.ttl)
}

// Close releases the underlying store.
func (c *ForecastCache) Close() error {
	return c.store.Close()
}
