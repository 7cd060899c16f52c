package repository

import (
	"context"
	"strconv"

	"LoadCast/internal/domain/models"
)

// EventProducer is the part of pkg/kafka.Producer used to emit forecast events.
type EventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaForecastPublisher emits ForecastEvents keyed by horizon.
type KafkaForecastPublisher struct {
	producer EventProducer
	topic    string
}

func NewKafkaForecastPublisher(p EventProducer, topic string) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: p, topic: topic}
}

func (p *KafkaForecastPublisher) Publish(ctx context.Context, ev models.ForecastEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(strconv.Itoa(ev.HorizonHours)), ev)
}

func (p *KafkaForecastPublisher) Close() error {
	return p.producer.Close()
}
