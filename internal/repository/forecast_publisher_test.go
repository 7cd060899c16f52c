package repository

import (
	"context"
	"testing"
	"time"

	"LoadCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	topic string
	key   string
	value interface{}
}

type fakeProducer struct {
	sent   []capturedMessage
	closed bool
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.sent = append(p.sent, capturedMessage{topic: topic, key: string(key), value: value})
	return nil
}

func (p *fakeProducer) Close() error {
	p.closed = true
	return nil
}

func TestKafkaForecastPublisher(t *testing.T) {
	prod := &fakeProducer{}
	pub := NewKafkaForecastPublisher(prod, "loadcast.forecasts")

	ev := models.ForecastEvent{
		ReferenceDate: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		HorizonHours:  168,
		Points:        672,
		Model:         "lstm@abc",
	}
	require.NoError(t, pub.Publish(context.Background(), ev))
	require.Len(t, prod.sent, 1)
	assert.Equal(t, "loadcast.forecasts", prod.sent[0].topic)
	assert.Equal(t, "168", prod.sent[0].key)
	assert.Equal(t, ev, prod.sent[0].value)

	require.NoError(t, pub.Close())
	assert.True(t, prod.closed)
}
