package upstreamcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/flightpulse/internal/domain/flightstatus"
)

// FlightClient caches successful flight lookups. Failures, including rate
// limits, are never cached.
type FlightClient struct {
	inner  flightstatus.FlightDataClient
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewFlightClient wraps inner with store.
func NewFlightClient(inner flightstatus.FlightDataClient, store Store, ttl time.Duration, logger *slog.Logger) *FlightClient {
	return &FlightClient{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "upstreamcache.flights"),
	}
}

func (c *FlightClient) FetchFlightByNumber(ctx context.Context, number, date string) ([]flightstatus.FlightRecord, error) {
	key := fmt.Sprintf("flight:number:%s:%s", number, date)
	return c.fetch(ctx, key, func(ctx context.Context) ([]flightstatus.FlightRecord, error) {
		return c.inner.FetchFlightByNumber(ctx, number, date)
	})
}

func (c *FlightClient) FetchFlightsForAirport(ctx context.Context, airport string, start, end time.Time) ([]flightstatus.FlightRecord, error) {
	key := fmt.Sprintf("flight:airport:%s:%d:%d", airport, start.Unix()/60, end.Unix()/60)
	return c.fetch(ctx, key, func(ctx context.Context) ([]flightstatus.FlightRecord, error) {
		return c.inner.FetchFlightsForAirport(ctx, airport, start, end)
	})
}

// fetch coalesces concurrent misses on key. The shared load is detached from
// the caller's cancellation so one departing caller cannot fail the others;
// each caller still stops waiting when its own ctx is done.
func (c *FlightClient) fetch(ctx context.Context, key string, load func(context.Context) ([]flightstatus.FlightRecord, error)) ([]flightstatus.FlightRecord, error) {
	var cached []flightstatus.FlightRecord
	if lookup(ctx, c.store, key, &cached, c.logger) {
		return cached, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		records, err := load(shared)
		if err != nil {
			return nil, err
		}
		save(shared, c.store, key, records, c.ttl, c.logger)
		return records, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]flightstatus.FlightRecord), nil
	}
}

var _ flightstatus.FlightDataClient = (*FlightClient)(nil)
