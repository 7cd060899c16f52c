package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"LoadCast/internal/domain/models"
	domrepo "LoadCast/internal/domain/repository"
	domsvc "LoadCast/internal/domain/service"
	"LoadCast/internal/services/features"
	"LoadCast/pkg/logger"
)

const (
	StageLoad      = "load"
	StagePrepare   = "prepare"
	StageModel     = "model"
	StageInference = "inference"

	defaultPublishTimeout = 2 * time.Second
)

// LoadForecaster runs the forecast pipeline for one reference date and horizon.
// Every call reads the data store afresh and shares only the loaded model.
type LoadForecaster struct {
	store     domrepo.SeriesStore
	models    domsvc.ModelProvider
	cache     domrepo.ForecastCache
	publisher domrepo.ForecastPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger

	selector       features.Selector
	window         int
	publishTimeout time.Duration
	now            func() time.Time
}

type Option func(*LoadForecaster)

func WithCache(c domrepo.ForecastCache) Option {
	return func(f *LoadForecaster) { f.cache = c }
}

func WithPublisher(p domrepo.ForecastPublisher) Option {
	return func(f *LoadForecaster) { f.publisher = p }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(f *LoadForecaster) {
		if m != nil {
			f.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(f *LoadForecaster) {
		if l != nil {
			f.log = l
		}
	}
}

// WithWindowLength overrides the number of past steps fed to the model.
func WithWindowLength(n int) Option {
	return func(f *LoadForecaster) {
		if n > 0 {
			f.window = n
		}
	}
}

// WithSelector overrides the lookback and grid step.
func WithSelector(s features.Selector) Option {
	return func(f *LoadForecaster) { f.selector = s }
}

func WithPublishTimeout(d time.Duration) Option {
	return func(f *LoadForecaster) {
		if d > 0 {
			f.publishTimeout = d
		}
	}
}

func NewLoadForecaster(store domrepo.SeriesStore, provider domsvc.ModelProvider, opts ...Option) *LoadForecaster {
	f := &LoadForecaster{
		store:          store,
		models:         provider,
		metrics:        nopMetrics{},
		log:            logger.Nop(),
		selector:       features.NewSelector(features.DefaultLookback, features.DefaultStep),
		window:         features.DefaultWindowLength,
		publishTimeout: defaultPublishTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Predict forecasts horizonHours from ref. Errors are always *models.ForecastError.
func (f *LoadForecaster) Predict(ctx context.Context, ref time.Time, horizonHours int) (models.ForecastResult, error) {
	start := f.now()
	res, cached, model, err := f.predict(ctx, ref, horizonHours)
	if err != nil {
		kind := models.KindOf(err)
		f.metrics.RecordError(kind.String())
		f.log.Warn("forecast failed",
			logger.String("date", ref.Format(time.DateOnly)),
			logger.Int("horizon_hours", horizonHours),
			logger.String("kind", kind.String()),
			logger.Error(err))
		return models.ForecastResult{}, err
	}

	f.metrics.RecordForecast(horizonLabel(horizonHours), res.Len())
	if model != "" {
		f.publish(ctx, models.ForecastEvent{
			ReferenceDate: ref,
			HorizonHours:  horizonHours,
			Points:        res.Len(),
			Model:         model,
			Cached:        cached,
			DurationMs:    f.now().Sub(start).Milliseconds(),
			CreatedAt:     f.now().UTC(),
		})
	}
	return res, nil
}

func (f *LoadForecaster) predict(ctx context.Context, ref time.Time, horizonHours int) (models.ForecastResult, bool, string, error) {
	t := f.now()
	readings, err := f.store.LoadReadings(ctx)
	if err != nil {
		return models.ForecastResult{}, false, "", models.NewForecastError(models.KindDataUnavailable, err)
	}
	series, err := features.NewSeries(readings).Resample(f.selector.Step)
	if err != nil {
		return models.ForecastResult{}, false, "", models.NewForecastError(models.KindDataUnavailable, err)
	}
	f.stage(StageLoad, t)
	first, last := series.Bounds()
	f.log.Debug("series loaded",
		logger.Int("rows", series.Len()),
		logger.Int("missing", series.Missing()),
		logger.String("first", first.Format(time.DateTime)),
		logger.String("last", last.Format(time.DateTime)))

	t = f.now()
	sel, err := f.selector.Select(series, ref, horizonHours)
	if err != nil {
		if errors.Is(err, features.ErrEmptyTestRange) {
			return models.ForecastResult{}, false, "", models.NewForecastError(models.KindEmptyTestRange, err)
		}
		return models.ForecastResult{}, false, "", models.NewForecastError(models.KindDataUnavailable, err)
	}
	scaler, err := features.FitMinMax(sel.Train)
	if err != nil {
		return models.ForecastResult{}, false, "", models.NewForecastError(models.KindInsufficientHistory,
			fmt.Errorf("no training data up to %s: %w", sel.TrainEnd.Format(time.DateTime), err))
	}
	inputs, targets := features.MakeWindows(scaler.Transform(sel.Test), f.window)
	f.stage(StagePrepare, t)
	f.log.Debug("windows built",
		logger.Int("train", len(sel.Train)),
		logger.Int("test", len(sel.Test)),
		logger.Int("windows", len(inputs)),
		logger.Int("window_length", f.window),
		logger.Float64("scaler_min", scaler.Min()),
		logger.Float64("scaler_max", scaler.Max()),
		logger.Floats("test_head", sel.Test))

	if len(inputs) == 0 {
		return models.ForecastResult{PredictedLoad: []float64{}, ActualLoad: []float64{}}, false, "", nil
	}

	t = f.now()
	model, err := f.models.Model(ctx)
	if err != nil {
		return models.ForecastResult{}, false, "", models.NewForecastError(models.KindInference, fmt.Errorf("load model: %w", err))
	}
	f.stage(StageModel, t)

	key := f.cacheKey(model.Name(), series.Fingerprint(), ref, horizonHours)
	if res, ok := f.cached(ctx, key); ok {
		return res, true, model.Name(), nil
	}

	t = f.now()
	batch := features.Reshape(inputs)
	n, steps, feats := batch.Shape()
	f.log.Debug("running inference",
		logger.String("model", model.Name()),
		logger.Int("batch", n),
		logger.Int("steps", steps),
		logger.Int("features", feats))
	preds, err := model.Infer(ctx, batch)
	if err != nil {
		return models.ForecastResult{}, false, "", models.NewForecastError(models.KindInference, err)
	}
	if len(preds) != len(targets) {
		return models.ForecastResult{}, false, "", models.NewForecastError(models.KindInference,
			fmt.Errorf("model returned %d predictions for %d windows", len(preds), len(targets)))
	}
	for i, p := range preds {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return models.ForecastResult{}, false, "", models.NewForecastError(models.KindInference,
				fmt.Errorf("prediction %d is not finite", i))
		}
	}
	f.stage(StageInference, t)

	res := models.ForecastResult{
		PredictedLoad: scaler.InverseTransform(preds),
		ActualLoad:    scaler.InverseTransform(targets),
	}
	f.log.Debug("forecast ready",
		logger.Floats("predicted_head", res.PredictedLoad),
		logger.Floats("actual_head", res.ActualLoad))
	f.remember(ctx, key, res)
	return res, false, model.Name(), nil
}

func (f *LoadForecaster) stage(name string, since time.Time) {
	f.metrics.RecordStage(name, f.now().Sub(since).Seconds())
}

func (f *LoadForecaster) cacheKey(model, fingerprint string, ref time.Time, horizonHours int) string {
	return fmt.Sprintf("forecast:%s:%s:w%d:l%d:%s:%d",
		model, fingerprint, f.window, int(f.selector.Lookback/time.Minute), ref.Format(time.DateOnly), horizonHours)
}

func (f *LoadForecaster) cached(ctx context.Context, key string) (models.ForecastResult, bool) {
	if f.cache == nil {
		return models.ForecastResult{}, false
	}
	res, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.log.Warn("forecast cache read failed", logger.String("key", key), logger.Error(err))
		f.metrics.RecordCache("error")
		return models.ForecastResult{}, false
	}
	if !ok {
		f.metrics.RecordCache("miss")
		return models.ForecastResult{}, false
	}
	f.metrics.RecordCache("hit")
	return res, true
}

func (f *LoadForecaster) remember(ctx context.Context, key string, res models.ForecastResult) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(ctx, key, res); err != nil {
		f.log.Warn("forecast cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (f *LoadForecaster) publish(ctx context.Context, ev models.ForecastEvent) {
	if f.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.publishTimeout)
	defer cancel()
	if err := f.publisher.Publish(pctx, ev); err != nil {
		f.log.Error("publish forecast event", logger.Int("horizon_hours", ev.HorizonHours), logger.Error(err))
	}
}

func horizonLabel(hours int) string {
	for _, h := range models.Horizons() {
		if h.Hours == hours {
			return h.Name
		}
	}
	return fmt.Sprintf("%dh", hours)
}

type nopMetrics struct{}

func (nopMetrics) RecordStage(string, float64)   {}
func (nopMetrics) RecordForecast(string, int)    {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordCache(string)            {}
func (nopMetrics) RecordModelLoad(string, error) {}
