package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/flightpulse/internal/domain/flightstatus"
	"github.com/yanqian/flightpulse/internal/domain/prediction"
	"github.com/yanqian/flightpulse/internal/infra/classifier"
	"github.com/yanqian/flightpulse/internal/infra/config"
	"github.com/yanqian/flightpulse/internal/infra/flightdata/aerodatabox"
	"github.com/yanqian/flightpulse/internal/infra/predictionlog"
	"github.com/yanqian/flightpulse/internal/infra/upstreamcache"
	"github.com/yanqian/flightpulse/internal/infra/weather/openweather"
	"github.com/yanqian/flightpulse/pkg/metrics"
)

func providePredictionConfig(cfg *config.Config) prediction.Config {
	return prediction.Config{CategoricalColumns: cfg.Classifier.Categorical}
}

func provideFlightStatusConfig(cfg *config.Config) (flightstatus.Config, error) {
	window, err := flightstatus.NewWindowStrategy(cfg.Dashboard.Window, cfg.Dashboard.SlidingWindow)
	if err != nil {
		return flightstatus.Config{}, err
	}
	return flightstatus.Config{
		DefaultAirport: cfg.Dashboard.DefaultAirport,
		RecordCap:      cfg.Dashboard.RecordCap,
		IncludeFlights: cfg.Dashboard.IncludeFlights,
		Window:         window,
	}, nil
}

func provideUpstreamUsage() *metrics.UpstreamUsage {
	return &metrics.UpstreamUsage{}
}

func provideWeatherClient(cfg *config.Config, logger *slog.Logger) *openweather.Client {
	if strings.TrimSpace(cfg.Weather.APIKey) == "" {
		logger.Warn("openweather api key not set, weather lookups will fail")
	}
	return openweather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout)
}

func provideFlightDataClient(cfg *config.Config, logger *slog.Logger) *aerodatabox.Client {
	if strings.TrimSpace(cfg.FlightData.APIKey) == "" {
		logger.Warn("rapidapi key not set, flight lookups will fail")
	}
	return aerodatabox.NewClient(aerodatabox.Options{
		BaseURL:  cfg.FlightData.BaseURL,
		Host:     cfg.FlightData.Host,
		APIKey:   cfg.FlightData.APIKey,
		CodeType: cfg.FlightData.CodeType,
		Timeout:  cfg.FlightData.Timeout,
	})
}

// provideCacheStore returns nil when caching is disabled.
func provideCacheStore(cfg *config.Config, logger *slog.Logger) (upstreamcache.Store, func()) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		return nil, noop
	}
	if strings.TrimSpace(cfg.Cache.Addr) == "" {
		logger.Info("cache addr not set, using memory store")
		return upstreamcache.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return upstreamcache.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return upstreamcache.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return upstreamcache.NewMemoryStore(), noop
	}
	logger.Info("upstream valkey cache enabled", "addr", cfg.Cache.Addr)
	return upstreamcache.NewValkeyStore(client, cfg.Cache.Prefix), client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}, nil
}

func provideWeatherGateway(cfg *config.Config, client *openweather.Client, store upstreamcache.Store, logger *slog.Logger) prediction.WeatherClient {
	if store == nil {
		return client
	}
	return upstreamcache.NewWeatherClient(client, store, cfg.Cache.WeatherTTL, logger)
}

func provideFlightGateway(cfg *config.Config, client *aerodatabox.Client, store upstreamcache.Store, logger *slog.Logger) flightstatus.FlightDataClient {
	if store == nil {
		return client
	}
	return upstreamcache.NewFlightClient(client, store, cfg.Cache.FlightTTL, logger)
}

func provideClassifier(cfg *config.Config, logger *slog.Logger) (*classifier.LogisticModel, error) {
	var (
		source classifier.Source
		origin string
	)
	store := cfg.Classifier.ObjectStorage
	switch {
	case store.Enabled():
		s, err := classifier.NewObjectStorageSource(store.Endpoint, store.AccessKey, store.SecretKey, store.Region, store.Bucket, store.Key)
		if err != nil {
			return nil, err
		}
		source, origin = s, "s3://"+store.Bucket+"/"+store.Key
	case strings.TrimSpace(cfg.Classifier.ModelPath) != "":
		source, origin = classifier.FileSource{Path: cfg.Classifier.ModelPath}, cfg.Classifier.ModelPath
	default:
		logger.Warn("no classifier artifact configured, using embedded development model")
		source, origin = classifier.EmbeddedSource{}, "embedded"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	model, err := classifier.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	logger.Info("classifier loaded", "source", origin, "version", model.Version(), "features", len(model.ExpectedFeatureNames()))
	return model, nil
}

func provideAuditLog(cfg *config.Config, logger *slog.Logger) (prediction.AuditLog, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Audit.Postgres.DSN)
	if dsn == "" {
		logger.Info("audit postgres dsn not set, prediction audit disabled")
		return predictionlog.NopLog{}, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := predictionlog.OpenPostgres(ctx, poolConfig(dsn, cfg.Audit.Postgres))
	if err != nil {
		logger.Error("postgres unavailable, prediction audit disabled", "error", err)
		return predictionlog.NopLog{}, noop
	}
	log := predictionlog.NewPostgresLog(pool)
	if err := log.CreateSchema(ctx); err != nil {
		logger.Error("audit schema setup failed, prediction audit disabled", "error", err)
		log.Close()
		return predictionlog.NopLog{}, noop
	}
	logger.Info("prediction audit postgres log enabled")
	return log, log.Close
}

func poolConfig(dsn string, pg config.PostgresConfig) predictionlog.PoolConfig {
	return predictionlog.PoolConfig{
		DSN:             dsn,
		MaxConns:        pg.MaxConns,
		MinConns:        pg.MinConns,
		MaxConnLifetime: pg.MaxConnLifetime,
		MaxConnIdleTime: pg.MaxConnIdleTime,
	}
}
