package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxRoundTrip(t *testing.T) {
	train := []float64{120.5, 98.25, 143.0, 101.75, 133.125}
	s, err := FitMinMax(train)
	require.NoError(t, err)

	scaled := s.Transform(train)
	for _, v := range scaled {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	back := s.InverseTransform(scaled)
	for i := range train {
		assert.InDelta(t, train[i], back[i], 1e-9)
	}
}

func TestMinMaxDoesNotClamp(t *testing.T) {
	s, err := FitMinMax([]float64{10, 20})
	require.NoError(t, err)

	got := s.Transform([]float64{5, 15, 30})
	assert.InDeltaSlice(t, []float64{-0.5, 0.5, 2}, got, 1e-12)
}

func TestMinMaxConstantUsesUnitRange(t *testing.T) {
	s, err := FitMinMax([]float64{7, 7, 7})
	require.NoError(t, err)

	got := s.Transform([]float64{7, 8})
	assert.Equal(t, []float64{0, 1}, got)
	assert.Equal(t, []float64{7, 8}, s.InverseTransform(got))
}

func TestMinMaxEmpty(t *testing.T) {
	_, err := FitMinMax(nil)
	assert.ErrorIs(t, err, ErrEmptyFit)
}
