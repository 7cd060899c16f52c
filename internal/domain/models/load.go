package models

import (
	"math"
	"time"
)

// LoadReading is one observation of the load series. Valid is false for a
// grid slot without a usable value.
type LoadReading struct {
	Timestamp time.Time
	Load      float64
	Valid     bool
}

// NewLoadReading builds a reading that is valid only when ok and load is finite.
func NewLoadReading(ts time.Time, load float64, ok bool) LoadReading {
	if !ok || math.IsNaN(load) || math.IsInf(load, 0) {
		return LoadReading{Timestamp: ts}
	}
	return LoadReading{Timestamp: ts, Load: load, Valid: true}
}

// Batch is a model input tensor shaped (batch, steps, features).
type Batch [][][]float64

// Shape returns the batch dimensions, taking steps and features from the first sample.
func (b Batch) Shape() (n, steps, features int) {
	n = len(b)
	if n == 0 {
		return 0, 0, 0
	}
	steps = len(b[0])
	if steps > 0 {
		features = len(b[0][0])
	}
	return n, steps, features
}
