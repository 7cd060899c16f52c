package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordForecast("day", 96)
	r.RecordForecast("day", 96)
	r.RecordError("empty_test_range")
	r.RecordCache("hit")
	r.RecordModelLoad("native", nil)
	r.RecordModelLoad("native", errors.New("x"))
	r.RecordStage("load", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.forecasts.WithLabelValues("day")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("empty_test_range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheResults.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelLoads.WithLabelValues("native", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stageLatency))
}

func TestNewRegistryIsolated(t *testing.T) {
	assert.NotPanics(t, func() {
		New(NewRegistry())
		New(NewRegistry())
	})
}
