package repository

import (
	"context"

	"LoadCast/internal/domain/models"
)

// SeriesStore gives read-only access to the historical load readings.
// Every call reads the source afresh.
type SeriesStore interface {
	LoadReadings(ctx context.Context) ([]models.LoadReading, error)
	Health(ctx context.Context) error
	Close() error
}

// ForecastCache stores computed forecasts keyed by data and model identity.
type ForecastCache interface {
	Get(ctx context.Context, key string) (models.ForecastResult, bool, error)
	Set(ctx context.Context, key string, res models.ForecastResult) error
}

// ForecastPublisher emits forecast events to downstream consumers.
type ForecastPublisher interface {
	Publish(ctx context.Context, ev models.ForecastEvent) error
	Close() error
}

type Metrics interface {
	RecordStage(stage string, seconds float64)
	RecordForecast(horizon string, points int)
	RecordError(kind string)
	RecordCache(result string)
	RecordModelLoad(backend string, err error)
}
