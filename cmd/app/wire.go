//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/flightpulse/internal/bootstrap"
	"github.com/yanqian/flightpulse/internal/domain/flightstatus"
	"github.com/yanqian/flightpulse/internal/domain/prediction"
	"github.com/yanqian/flightpulse/internal/infra/classifier"
	"github.com/yanqian/flightpulse/internal/infra/config"
	httpiface "github.com/yanqian/flightpulse/internal/interface/http"
	"github.com/yanqian/flightpulse/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		providePredictionConfig,
		provideFlightStatusConfig,
		provideUpstreamUsage,
		provideWeatherClient,
		provideFlightDataClient,
		provideCacheStore,
		provideWeatherGateway,
		provideFlightGateway,
		provideClassifier,
		provideAuditLog,
		flightstatus.LoadFallback,
		prediction.NewService,
		flightstatus.NewService,
		wire.Bind(new(prediction.Classifier), new(*classifier.LogisticModel)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
