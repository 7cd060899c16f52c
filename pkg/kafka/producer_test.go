package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestProducerPublishJSON(t *testing.T) {
	w := &memWriter{}
	reg := prometheus.NewRegistry()
	p, err := NewProducer(WithWriter(w), WithRegisterer(reg))
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "forecasts", []byte("day"), map[string]int{"points": 96}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "forecasts", w.msgs[0].Topic)
	assert.Equal(t, "day", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"points":96}`, string(w.msgs[0].Value))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.messages.WithLabelValues("forecasts", "ok")))
}

func TestProducerPublishError(t *testing.T) {
	w := &memWriter{err: errors.New("broker down")}
	p, err := NewProducer(WithWriter(w), WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)

	err = p.PublishMessage(context.Background(), "logs", "raw")
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.messages.WithLabelValues("logs", "error")))
}

func TestProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(WithRegisterer(nil))
	assert.Error(t, err)
}
