package prediction

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
	apperrors "github.com/yanqian/flightpulse/pkg/errors"
	"github.com/yanqian/flightpulse/pkg/util"
)

// Service exposes flight cancellation prediction.
type Service interface {
	PredictCancellation(ctx context.Context, req Request) (Response, error)
}

// WeatherClient fetches current weather for a city.
type WeatherClient interface {
	FetchWeather(ctx context.Context, city string) (WeatherSnapshot, error)
}

// AuditLog stores served predictions.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
}

type service struct {
	weather   WeatherClient
	assembler *Assembler
	predictor *Predictor
	audit     AuditLog
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the prediction domain.
func NewService(cfg Config, weather WeatherClient, classifier Classifier, audit AuditLog, logger *slog.Logger) Service {
	predictor := NewPredictor(classifier)
	return &service{
		weather:   weather,
		assembler: NewAssembler(predictor.Schema(), cfg.CategoricalColumns),
		predictor: predictor,
		audit:     audit,
		logger:    logger.With("component", "prediction.service"),
		now:       util.NowUTC,
	}
}

func (s *service) PredictCancellation(ctx context.Context, req Request) (Response, error) {
	city := strings.TrimSpace(req.CityName)
	if city == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city_name is required", nil)
	}
	if req.ModelInput == nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "model_input is required", nil)
	}

	weather, err := s.weather.FetchWeather(ctx, city)
	if err != nil {
		s.logger.Warn("weather fetch failed", "city", city, "kind", upstream.KindOf(err), "error", err)
		return Response{}, apperrors.Wrap(apperrors.CodeUpstreamError, "failed to fetch weather data", err)
	}

	features := s.assembler.Assemble(req.ModelInput, weather)
	result, err := s.predictor.Predict(features)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeClassifierError, "prediction failed", err)
	}
	s.logger.Info("cancellation predicted", "city", city, "label", result.Label.String(), "confidence", result.Confidence)

	if s.audit != nil {
		entry := AuditEntry{
			ID:         uuid.New(),
			CityName:   city,
			Weather:    weather,
			Features:   features,
			Label:      result.Label,
			Confidence: result.Confidence,
			CreatedAt:  s.now(),
		}
		if err := s.audit.Append(ctx, entry); err != nil {
			s.logger.Warn("prediction audit append failed", "error", err)
		}
	}

	return Response{
		Prediction:      int(result.Label),
		ConfidenceScore: result.Confidence,
	}, nil
}
