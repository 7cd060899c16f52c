package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"LoadCast/internal/domain/models"
	domsvc "LoadCast/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	readings []models.LoadReading
	err      error
}

func (s *fakeStore) LoadReadings(context.Context) ([]models.LoadReading, error) {
	return s.readings, s.err
}
func (s *fakeStore) Health(context.Context) error { return s.err }
func (s *fakeStore) Close() error                 { return nil }

// persistenceModel predicts the last value of each window.
type persistenceModel struct {
	mu    sync.Mutex
	calls int
	out   func(n int) []float64
	err   error
}

func (m *persistenceModel) Name() string { return "persistence" }

func (m *persistenceModel) Infer(_ context.Context, b models.Batch) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.out != nil {
		return m.out(len(b)), nil
	}
	preds := make([]float64, len(b))
	for i, w := range b {
		preds[i] = w[len(w)-1][0]
	}
	return preds, nil
}

type staticProvider struct {
	model domsvc.Model
	err   error
}

func (p staticProvider) Model(context.Context) (domsvc.Model, error) { return p.model, p.err }

type mapCache struct {
	mu sync.Mutex
	m  map[string]models.ForecastResult
}

func (c *mapCache) Get(_ context.Context, key string) (models.ForecastResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.m[key]
	return r, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, r models.ForecastResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = r
	return nil
}

type recordingPublisher struct {
	events []models.ForecastEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.ForecastEvent) error {
	p.events = append(p.events, ev)
	return nil
}
func (p *recordingPublisher) Close() error { return nil }

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// synthetic builds a 15 minute series on [from, to) with a daily shape.
func synthetic(from, to time.Time) []models.LoadReading {
	var out []models.LoadReading
	for ts, i := from, 0; ts.Before(to); ts, i = ts.Add(15*time.Minute), i+1 {
		v := 1000 + 200*math.Sin(2*math.Pi*float64(i)/96) + float64(i%7)
		out = append(out, models.LoadReading{Timestamp: ts, Load: v, Valid: true})
	}
	return out
}

func newForecaster(store *fakeStore, m domsvc.Model, opts ...Option) *LoadForecaster {
	return NewLoadForecaster(store, staticProvider{model: m}, opts...)
}

func TestPredictHorizonLengths(t *testing.T) {
	store := &fakeStore{readings: synthetic(date("2023-01-01"), date("2023-04-01"))}
	f := newForecaster(store, &persistenceModel{})

	for _, tc := range []struct {
		h    models.Horizon
		want int
	}{
		{models.HorizonDay, 96},
		{models.HorizonWeek, 672},
		{models.HorizonMonth, 2976},
	} {
		t.Run(tc.h.Name, func(t *testing.T) {
			res, err := f.Predict(context.Background(), date("2023-02-01"), tc.h.Hours)
			require.NoError(t, err)
			assert.Len(t, res.PredictedLoad, tc.want)
			assert.Len(t, res.ActualLoad, tc.want)
		})
	}
}

func TestPredictPersistenceModelLagsActuals(t *testing.T) {
	readings := synthetic(date("2023-01-01"), date("2023-03-01"))
	f := newForecaster(&fakeStore{readings: readings}, &persistenceModel{})

	res, err := f.Predict(context.Background(), date("2023-02-01"), models.HorizonDay.Hours)
	require.NoError(t, err)
	require.Equal(t, 96, res.Len())

	for i := 1; i < res.Len(); i++ {
		assert.InDelta(t, res.ActualLoad[i-1], res.PredictedLoad[i], 1e-6)
	}
	// the first target is the reading at the reference date itself
	idx := int(date("2023-02-01").Sub(date("2023-01-01")) / (15 * time.Minute))
	assert.InDelta(t, readings[idx].Load, res.ActualLoad[0], 1e-6)
	assert.InDelta(t, readings[idx-1].Load, res.PredictedLoad[0], 1e-6)
}

func TestPredictShortMonthAtDataEnd(t *testing.T) {
	f := newForecaster(&fakeStore{readings: synthetic(date("2023-01-01"), date("2023-03-01"))}, &persistenceModel{})

	res, err := f.Predict(context.Background(), date("2023-02-01"), models.HorizonMonth.Hours)
	require.NoError(t, err)
	// data stops at 2023-02-28 23:45
	assert.Equal(t, 28*96, res.Len())
}

func TestPredictTooFewTestPoints(t *testing.T) {
	m := &persistenceModel{}
	f := newForecaster(&fakeStore{readings: synthetic(date("2023-01-01"), date("2023-01-10"))}, m)

	res, err := f.Predict(context.Background(), date("2023-01-10"), models.HorizonDay.Hours)
	require.NoError(t, err)
	assert.NotNil(t, res.PredictedLoad)
	assert.NotNil(t, res.ActualLoad)
	assert.Empty(t, res.PredictedLoad)
	assert.Equal(t, 0, m.calls)
}

func TestPredictErrorKinds(t *testing.T) {
	readings := synthetic(date("2023-01-01"), date("2023-02-01"))
	dup := append(append([]models.LoadReading{}, readings...), readings[10])
	ref := date("2023-01-15")

	tests := []struct {
		name     string
		store    *fakeStore
		provider staticProvider
		ref      time.Time
		want     models.ErrorKind
	}{
		{"store failure", &fakeStore{err: errors.New("no such file")}, staticProvider{model: &persistenceModel{}}, ref, models.KindDataUnavailable},
		{"duplicate timestamps", &fakeStore{readings: dup}, staticProvider{model: &persistenceModel{}}, ref, models.KindDataUnavailable},
		{"date after data", &fakeStore{readings: readings}, staticProvider{model: &persistenceModel{}}, date("2024-01-01"), models.KindEmptyTestRange},
		{"empty store", &fakeStore{}, staticProvider{model: &persistenceModel{}}, ref, models.KindEmptyTestRange},
		{"no history", &fakeStore{readings: readings}, staticProvider{model: &persistenceModel{}}, date("2023-01-01"), models.KindInsufficientHistory},
		{"model load", &fakeStore{readings: readings}, staticProvider{err: errors.New("missing artifact")}, ref, models.KindInference},
		{"infer", &fakeStore{readings: readings}, staticProvider{model: &persistenceModel{err: errors.New("bad tensor")}}, ref, models.KindInference},
		{"wrong count", &fakeStore{readings: readings}, staticProvider{model: &persistenceModel{out: func(n int) []float64 { return make([]float64, n-1) }}}, ref, models.KindInference},
		{"nan", &fakeStore{readings: readings}, staticProvider{model: &persistenceModel{out: func(n int) []float64 {
			xs := make([]float64, n)
			xs[3] = math.NaN()
			return xs
		}}}, ref, models.KindInference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLoadForecaster(tt.store, tt.provider)
			res, err := f.Predict(context.Background(), tt.ref, models.HorizonDay.Hours)
			require.Error(t, err)

			var fe *models.ForecastError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.want, fe.Kind)
			assert.Nil(t, res.PredictedLoad)
		})
	}
}

func TestPredictUsesCache(t *testing.T) {
	m := &persistenceModel{}
	cache := &mapCache{m: map[string]models.ForecastResult{}}
	pub := &recordingPublisher{}
	f := newForecaster(&fakeStore{readings: synthetic(date("2023-01-01"), date("2023-03-01"))}, m,
		WithCache(cache), WithPublisher(pub))

	first, err := f.Predict(context.Background(), date("2023-02-01"), 24)
	require.NoError(t, err)
	second, err := f.Predict(context.Background(), date("2023-02-01"), 24)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.calls)
	assert.Len(t, cache.m, 1)

	require.Len(t, pub.events, 2)
	assert.False(t, pub.events[0].Cached)
	assert.True(t, pub.events[1].Cached)
	assert.Equal(t, 96, pub.events[1].Points)
	assert.Equal(t, "persistence", pub.events[0].Model)
}

func TestPredictCacheKeyTracksData(t *testing.T) {
	m := &persistenceModel{}
	cache := &mapCache{m: map[string]models.ForecastResult{}}
	store := &fakeStore{readings: synthetic(date("2023-01-01"), date("2023-03-01"))}
	f := newForecaster(store, m, WithCache(cache))

	_, err := f.Predict(context.Background(), date("2023-02-01"), 24)
	require.NoError(t, err)

	store.readings = append([]models.LoadReading{}, store.readings...)
	store.readings[0].Load++
	_, err = f.Predict(context.Background(), date("2023-02-01"), 24)
	require.NoError(t, err)

	assert.Equal(t, 2, m.calls)
	assert.Len(t, cache.m, 2)
}
