package predictionlog

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/flightpulse/internal/domain/prediction"
)

func TestEncodeFeaturesKeepsNonZero(t *testing.T) {
	data, err := encodeFeatures(prediction.FeatureVector{
		{Name: "carrier_code_DL", Value: 1},
		{Name: "carrier_code_AA", Value: 0},
		{Name: "Feature_HourlyWindSpeed_x", Value: 4.5},
	})
	require.NoError(t, err)

	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, map[string]float64{"carrier_code_DL": 1, "Feature_HourlyWindSpeed_x": 4.5}, decoded)
}

func TestNopLog(t *testing.T) {
	require.NoError(t, NopLog{}.Append(context.Background(), prediction.AuditEntry{}))
}

// setupTestPostgres returns nil when FLIGHTPULSE_TEST_POSTGRES_DSN is unset or unreachable.
func setupTestPostgres(t *testing.T) *PostgresLog {
	t.Helper()
	dsn := os.Getenv("FLIGHTPULSE_TEST_POSTGRES_DSN")
	if dsn == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := OpenPostgres(ctx, PoolConfig{DSN: dsn, MaxConns: 2})
	if err != nil {
		return nil
	}
	log := NewPostgresLog(pool)
	if err := log.CreateSchema(ctx); err != nil {
		log.Close()
		return nil
	}
	return log
}

func TestPostgresLogAppend(t *testing.T) {
	log := setupTestPostgres(t)
	if log == nil {
		t.Skip("No PostgreSQL connection available")
	}
	defer log.Close()

	ctx := context.Background()
	entry := prediction.AuditEntry{
		ID:       uuid.New(),
		CityName: "Atlanta",
		Weather: prediction.WeatherSnapshot{
			WindSpeed:    3.1,
			VisibilityKM: 10,
			TemperatureC: 27,
			PressureHPA:  prediction.DefaultPressureHPA,
		},
		Features:   prediction.FeatureVector{{Name: "carrier_code_DL", Value: 1}},
		Label:      prediction.Cancelled,
		Confidence: 0.71,
		CreatedAt:  time.Date(2025, 7, 11, 15, 0, 0, 0, time.UTC),
	}
	require.NoError(t, log.Append(ctx, entry))

	var (
		city  string
		label int16
	)
	err := log.pool.QueryRow(ctx, `SELECT city_name, label FROM prediction_audit WHERE id = $1`, entry.ID).Scan(&city, &label)
	require.NoError(t, err)
	require.Equal(t, "Atlanta", city)
	require.Equal(t, int16(prediction.Cancelled), label)
}
