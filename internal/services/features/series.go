package features

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"LoadCast/internal/domain/models"
)

// ErrDuplicateTimestamp is returned by Resample when two readings share a timestamp.
var ErrDuplicateTimestamp = errors.New("duplicate timestamp")

// Series is an ordered load series. Missing observations stay in the series
// as invalid points so that a resampled series is a dense grid.
type Series struct {
	points []models.LoadReading
	step   time.Duration
}

// NewSeries copies readings into a Series without reordering them.
func NewSeries(readings []models.LoadReading) Series {
	pts := make([]models.LoadReading, len(readings))
	copy(pts, readings)
	return Series{points: pts}
}

func (s Series) Len() int { return len(s.points) }

// Step is the grid spacing, zero until the series has been resampled.
func (s Series) Step() time.Duration { return s.step }

// Points returns a copy of the underlying points.
func (s Series) Points() []models.LoadReading {
	out := make([]models.LoadReading, len(s.points))
	copy(out, s.points)
	return out
}

// Missing counts invalid points.
func (s Series) Missing() int {
	n := 0
	for _, p := range s.points {
		if !p.Valid {
			n++
		}
	}
	return n
}

// Bounds returns the first and last timestamps, zero values when empty.
func (s Series) Bounds() (time.Time, time.Time) {
	if len(s.points) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.points[0].Timestamp, s.points[len(s.points)-1].Timestamp
}

// Resample sorts the series and reindexes it onto first, first+step, ..., last.
// Readings that do not fall on that grid are dropped and empty slots become
// missing points.
func (s Series) Resample(step time.Duration) (Series, error) {
	if step <= 0 {
		return Series{}, fmt.Errorf("resample: step must be positive, got %s", step)
	}
	if len(s.points) == 0 {
		return Series{step: step}, nil
	}

	sorted := s.Points()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Equal(sorted[i-1].Timestamp) {
			return Series{}, fmt.Errorf("resample: %w: %s", ErrDuplicateTimestamp, sorted[i].Timestamp.Format(time.DateTime))
		}
	}

	first := sorted[0].Timestamp
	last := sorted[len(sorted)-1].Timestamp
	n := int(last.Sub(first)/step) + 1

	grid := make([]models.LoadReading, n)
	for i := range grid {
		grid[i] = models.LoadReading{Timestamp: first.Add(time.Duration(i) * step)}
	}
	for _, p := range sorted {
		off := p.Timestamp.Sub(first)
		if off%step != 0 {
			continue
		}
		grid[int(off/step)] = p
	}
	return Series{points: grid, step: step}, nil
}

// SliceByTimeRange keeps points with start <= t <= end. A zero start leaves
// the range open at the beginning.
func (s Series) SliceByTimeRange(start, end time.Time) Series {
	out := make([]models.LoadReading, 0)
	for _, p := range s.points {
		if !start.IsZero() && p.Timestamp.Before(start) {
			continue
		}
		if p.Timestamp.After(end) {
			continue
		}
		out = append(out, p)
	}
	return Series{points: out, step: s.step}
}

// DropMissing returns the values of valid, finite points in time order.
func (s Series) DropMissing() []float64 {
	out := make([]float64, 0, len(s.points))
	for _, p := range s.points {
		if p.Valid && !math.IsNaN(p.Load) && !math.IsInf(p.Load, 0) {
			out = append(out, p.Load)
		}
	}
	return out
}

// Fingerprint hashes timestamps, values and validity of every point.
func (s Series) Fingerprint() string {
	h := fnv.New64a()
	var buf [17]byte
	for _, p := range s.points {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(p.Timestamp.UnixNano()))
		binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(p.Load))
		buf[16] = 0
		if p.Valid {
			buf[16] = 1
		}
		_, _ = h.Write(buf[:])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
