package features

import (
	"errors"
	"math"
)

// ErrEmptyFit is returned when a scaler is fitted on no values.
var ErrEmptyFit = errors.New("min-max scaler: no values to fit")

// MinMaxScaler maps the fitted [min, max] range linearly onto [0, 1].
// A constant fit uses a unit range, so transformed values become x - min.
type MinMaxScaler struct {
	min   float64
	max   float64
	scale float64
}

// FitMinMax fits a scaler on values. NaN and infinite values are ignored.
func FitMinMax(values []float64) (*MinMaxScaler, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		n++
	}
	if n == 0 {
		return nil, ErrEmptyFit
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	return &MinMaxScaler{min: lo, max: hi, scale: 1 / rng}, nil
}

func (s *MinMaxScaler) Min() float64 { return s.min }
func (s *MinMaxScaler) Max() float64 { return s.max }

// Transform scales xs into a new slice. Values outside the fitted range are not clamped.
func (s *MinMaxScaler) Transform(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = (x - s.min) * s.scale
	}
	return out
}

// InverseTransform maps scaled values back to original units.
func (s *MinMaxScaler) InverseTransform(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x/s.scale + s.min
	}
	return out
}
