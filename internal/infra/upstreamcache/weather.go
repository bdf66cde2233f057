package upstreamcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/flightpulse/internal/domain/prediction"
)

// WeatherClient caches successful weather lookups per city.
type WeatherClient struct {
	inner  prediction.WeatherClient
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewWeatherClient wraps inner with store.
func NewWeatherClient(inner prediction.WeatherClient, store Store, ttl time.Duration, logger *slog.Logger) *WeatherClient {
	return &WeatherClient{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "upstreamcache.weather"),
	}
}

func (c *WeatherClient) FetchWeather(ctx context.Context, city string) (prediction.WeatherSnapshot, error) {
	key := "weather:" + strings.ToLower(strings.TrimSpace(city))

	var cached prediction.WeatherSnapshot
	if lookup(ctx, c.store, key, &cached, c.logger) {
		return cached, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		snapshot, err := c.inner.FetchWeather(shared, city)
		if err != nil {
			return prediction.WeatherSnapshot{}, err
		}
		save(shared, c.store, key, snapshot, c.ttl, c.logger)
		return snapshot, nil
	})
	select {
	case <-ctx.Done():
		return prediction.WeatherSnapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return prediction.WeatherSnapshot{}, res.Err
		}
		return res.Val.(prediction.WeatherSnapshot), nil
	}
}

var _ prediction.WeatherClient = (*WeatherClient)(nil)

func lookup(ctx context.Context, store Store, key string, dst any, logger *slog.Logger) bool {
	payload, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		logger.Warn("cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func save(ctx context.Context, store Store, key string, value any, ttl time.Duration, logger *slog.Logger) {
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache entry unencodable", "key", key, "error", err)
		return
	}
	if err := store.Set(ctx, key, payload, ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
}
