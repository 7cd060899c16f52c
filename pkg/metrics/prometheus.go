package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	stageLatency *prometheus.HistogramVec
	forecasts    *prometheus.CounterVec
	points       *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
	cacheResults *prometheus.CounterVec
	modelLoads   *prometheus.CounterVec
}

// NewRegistry returns a registry preloaded with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates a recorder registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		stageLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loadcast_forecast_stage_seconds",
				Help:    "Duration of forecast pipeline stages",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadcast_forecasts_total",
				Help: "Successful forecasts by horizon",
			},
			[]string{"horizon"},
		),
		points: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loadcast_forecast_points",
				Help:    "Number of points returned per forecast",
				Buckets: []float64{0, 8, 96, 672, 2976},
			},
			[]string{"horizon"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadcast_forecast_errors_total",
				Help: "Failed forecasts by error kind",
			},
			[]string{"kind"},
		),
		cacheResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadcast_forecast_cache_total",
				Help: "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
		modelLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadcast_model_loads_total",
				Help: "Model load attempts by backend and result",
			},
			[]string{"backend", "result"},
		),
	}
}

// RecordStage records a pipeline stage latency in seconds.
func (r *Recorder) RecordStage(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}

func (r *Recorder) RecordForecast(horizon string, points int) {
	r.forecasts.WithLabelValues(horizon).Inc()
	r.points.WithLabelValues(horizon).Observe(float64(points))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordCache(result string) {
	r.cacheResults.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordModelLoad(backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.modelLoads.WithLabelValues(backend, result).Inc()
}
