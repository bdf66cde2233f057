package predictionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/flightpulse/internal/domain/prediction"
)

// PoolConfig controls the pgx pool used by PostgresLog.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PostgresLog appends prediction audit rows to PostgreSQL.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// OpenPostgres builds a pool from cfg and verifies connectivity.
func OpenPostgres(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// NewPostgresLog constructs the log over an existing pool.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS prediction_audit (
	id               UUID PRIMARY KEY,
	city_name        TEXT NOT NULL,
	wind_speed       DOUBLE PRECISION NOT NULL,
	visibility_km    DOUBLE PRECISION NOT NULL,
	precipitation_mm DOUBLE PRECISION NOT NULL,
	temperature_c    DOUBLE PRECISION NOT NULL,
	pressure_hpa     DOUBLE PRECISION NOT NULL,
	features         JSONB NOT NULL,
	label            SMALLINT NOT NULL,
	confidence       DOUBLE PRECISION NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prediction_audit_created_at ON prediction_audit (created_at);
`

// CreateSchema creates the audit table when missing.
func (l *PostgresLog) CreateSchema(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create prediction_audit schema: %w", err)
	}
	return nil
}

// Append implements prediction.AuditLog.
func (l *PostgresLog) Append(ctx context.Context, entry prediction.AuditEntry) error {
	features, err := encodeFeatures(entry.Features)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO prediction_audit (
			id, city_name, wind_speed, visibility_km, precipitation_mm,
			temperature_c, pressure_hpa, features, label, confidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		entry.ID,
		entry.CityName,
		entry.Weather.WindSpeed,
		entry.Weather.VisibilityKM,
		entry.Weather.PrecipitationMM,
		entry.Weather.TemperatureC,
		entry.Weather.PressureHPA,
		features,
		int16(entry.Label),
		entry.Confidence,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction audit: %w", err)
	}
	return nil
}

// Close releases the pool.
func (l *PostgresLog) Close() {
	l.pool.Close()
}

// encodeFeatures stores only non-zero features; the schema is recoverable
// from the model artifact.
func encodeFeatures(vector prediction.FeatureVector) ([]byte, error) {
	sparse := make(map[string]float64)
	for _, f := range vector {
		if f.Value != 0 {
			sparse[f.Name] = f.Value
		}
	}
	data, err := json.Marshal(sparse)
	if err != nil {
		return nil, fmt.Errorf("encode audit features: %w", err)
	}
	return data, nil
}

var _ prediction.AuditLog = (*PostgresLog)(nil)
