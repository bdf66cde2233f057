package prediction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
	apperrors "github.com/yanqian/flightpulse/pkg/errors"
)

func TestPredictCancellationSuccess(t *testing.T) {
	classifier := &stubClassifier{schema: testSchema, label: 1, proba: []float64{0.2, 0.8}}
	weather := &stubWeatherClient{snapshot: testWeather}
	audit := &stubAuditLog{}
	svc := newTestService(weather, classifier, audit)

	resp, err := svc.PredictCancellation(context.Background(), Request{
		CityName:   " Atlanta ",
		ModelInput: TripInput{"carrier_code": "DL", "distance": 760.0},
	})
	require.NoError(t, err)
	require.Equal(t, Response{Prediction: 1, ConfidenceScore: 0.8}, resp)
	require.Equal(t, "Atlanta", weather.lastCity)
	require.Len(t, classifier.lastFeatures, len(testSchema))

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	require.Equal(t, "Atlanta", entry.CityName)
	require.Equal(t, Cancelled, entry.Label)
	require.Equal(t, testSchema, entry.Features.Names())
	require.Equal(t, time.Date(2025, 7, 11, 12, 0, 0, 0, time.UTC), entry.CreatedAt)
}

func TestPredictCancellationValidatesInput(t *testing.T) {
	weather := &stubWeatherClient{snapshot: testWeather}
	svc := newTestService(weather, &stubClassifier{schema: testSchema}, nil)

	_, err := svc.PredictCancellation(context.Background(), Request{ModelInput: TripInput{}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.PredictCancellation(context.Background(), Request{CityName: "Atlanta"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	require.Zero(t, weather.calls)
}

func TestPredictCancellationWeatherFailure(t *testing.T) {
	failure := upstream.NewFailure("openweather", upstream.KindTransportError, 401, []byte(`{"cod":401}`), nil)
	svc := newTestService(&stubWeatherClient{err: failure}, &stubClassifier{schema: testSchema}, nil)

	_, err := svc.PredictCancellation(context.Background(), Request{CityName: "Atlanta", ModelInput: TripInput{}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamError))
	require.Equal(t, upstream.KindTransportError, upstream.KindOf(err))
}

func TestPredictCancellationClassifierFailure(t *testing.T) {
	classifier := &stubClassifier{schema: testSchema, predictErr: errors.New("corrupt model")}
	svc := newTestService(&stubWeatherClient{snapshot: testWeather}, classifier, nil)

	_, err := svc.PredictCancellation(context.Background(), Request{CityName: "Atlanta", ModelInput: TripInput{}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeClassifierError))
}

func TestPredictCancellationIgnoresAuditFailure(t *testing.T) {
	classifier := &stubClassifier{schema: testSchema, proba: []float64{0.9, 0.1}}
	audit := &stubAuditLog{err: errors.New("db down")}
	svc := newTestService(&stubWeatherClient{snapshot: testWeather}, classifier, audit)

	resp, err := svc.PredictCancellation(context.Background(), Request{CityName: "Atlanta", ModelInput: TripInput{}})
	require.NoError(t, err)
	require.Equal(t, 0.1, resp.ConfidenceScore)
}

func newTestService(weather WeatherClient, classifier Classifier, audit AuditLog) *service {
	svc := NewService(Config{}, weather, classifier, audit, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return time.Date(2025, 7, 11, 12, 0, 0, 0, time.UTC) }
	return svc
}

type stubWeatherClient struct {
	snapshot WeatherSnapshot
	err      error
	lastCity string
	calls    int
}

func (s *stubWeatherClient) FetchWeather(ctx context.Context, city string) (WeatherSnapshot, error) {
	s.calls++
	s.lastCity = city
	if s.err != nil {
		return WeatherSnapshot{}, s.err
	}
	return s.snapshot, nil
}

type stubAuditLog struct {
	entries []AuditEntry
	err     error
}

func (s *stubAuditLog) Append(ctx context.Context, entry AuditEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}
