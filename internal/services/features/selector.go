package features

import (
	"errors"
	"time"
)

const (
	DefaultStep         = 15 * time.Minute
	DefaultLookback     = 2 * time.Hour
	DefaultWindowLength = 8
)

// ErrEmptyTestRange means no valid reading falls inside the test window.
var ErrEmptyTestRange = errors.New("test range contains no data")

// Ranges are the timestamp bounds derived from a reference date and horizon.
type Ranges struct {
	TrainEnd  time.Time
	TestStart time.Time
	TestEnd   time.Time
}

// Selection is the output of Select: unscaled train and test values.
type Selection struct {
	Ranges
	Train []float64
	Test  []float64
}

// Selector splits a resampled series into train and test windows.
type Selector struct {
	Lookback time.Duration
	Step     time.Duration
}

// NewSelector returns a Selector, falling back to the defaults for non-positive values.
func NewSelector(lookback, step time.Duration) Selector {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if step <= 0 {
		step = DefaultStep
	}
	return Selector{Lookback: lookback, Step: step}
}

// Ranges computes the train/test bounds for ref and horizonHours.
func (sel Selector) Ranges(ref time.Time, horizonHours int) Ranges {
	return Ranges{
		TrainEnd:  ref.Add(-sel.Step),
		TestStart: ref.Add(-sel.Lookback),
		TestEnd:   ref.Add(time.Duration(horizonHours)*time.Hour - sel.Step),
	}
}

// Select returns all valid values up to TrainEnd as training data and all
// valid values in [TestStart, TestEnd] as test data.
func (sel Selector) Select(s Series, ref time.Time, horizonHours int) (Selection, error) {
	r := sel.Ranges(ref, horizonHours)
	test := s.SliceByTimeRange(r.TestStart, r.TestEnd).DropMissing()
	if len(test) == 0 {
		return Selection{Ranges: r}, ErrEmptyTestRange
	}
	train := s.SliceByTimeRange(time.Time{}, r.TrainEnd).DropMissing()
	return Selection{Ranges: r, Train: train, Test: test}, nil
}
