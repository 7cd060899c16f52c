//go:build wireinject
// +build wireinject

package di

import (
	"LoadCast/internal/usecase"
	"LoadCast/pkg/config"
	"LoadCast/pkg/server"

	"github.com/google/wire"
)

var forecastSet = wire.NewSet(
	// Metrics
	ProvideRegistry,
	ProvideMetrics,

	// Infrastructure clients
	ProvideKafkaProducer,
	ProvideLogger,

	// Repositories
	ProvideSeriesStore,
	ProvideForecastCache,
	ProvideForecastPublisher,

	// Model and use case
	ProvideModelProvider,
	ProvideForecaster,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		forecastSet,

		// HTTP surface
		ProvideHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeForecaster wires the forecast pipeline without the HTTP surface.
func InitializeForecaster(cfg *config.Config) (*usecase.LoadForecaster, func(), error) {
	wire.Build(forecastSet)
	return nil, nil, nil
}
