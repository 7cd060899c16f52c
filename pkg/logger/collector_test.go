package logger

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *recordingPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorDeduplicates(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Topic: "errors", Publisher: pub})

	c.AddLog("error", "model load failed", map[string]interface{}{"backend": "native"}, "loader.go:10")
	c.AddLog("error", "model load failed", map[string]interface{}{"backend": "native"}, "loader.go:10")
	c.AddLog("error", "read data", nil, "store.go:3")
	c.Close()

	require.Len(t, pub.batches, 1)
	assert.Equal(t, "errors", pub.topic)
	batch := pub.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "model load failed", batch[0].Message)
	assert.Equal(t, 2, batch[0].Count)
	assert.Equal(t, 1, batch[1].Count)
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	defer c.Close()

	c.AddLog("error", "a", nil, "x")
	c.AddLog("error", "b", nil, "x")

	assert.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.batches) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCollectorCloseWhileFlushing(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 1, Publisher: pub})

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.AddLog("error", "read data", map[string]interface{}{"row": strconv.Itoa(g*50 + i)}, "store.go:3")
			}
		}(g)
	}
	c.Close()
	wg.Wait()
	c.AddLog("error", "after close", nil, "x")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	total := 0
	for _, batch := range pub.batches {
		for _, e := range batch {
			assert.NotEqual(t, "after close", e.Message)
			total += e.Count
		}
	}
	assert.LessOrEqual(t, total, 200)
}

func TestNopLogger(t *testing.T) {
	l := Nop().With(String("component", "test"))
	assert.NotPanics(t, func() {
		l.Debug("debug", Floats("xs", []float64{1, 2, 3, 4, 5, 6}))
		l.Error("boom", Error(assert.AnError))
	})
}
