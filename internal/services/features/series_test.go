package features

import (
	"math"
	"testing"
	"time"

	"LoadCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return t
}

func reading(s string, v float64) models.LoadReading {
	return models.LoadReading{Timestamp: ts(s), Load: v, Valid: true}
}

func TestResampleFillsGapsAndSorts(t *testing.T) {
	s := NewSeries([]models.LoadReading{
		reading("2023-01-01 00:45:00", 4),
		reading("2023-01-01 00:00:00", 1),
		reading("2023-01-01 00:15:00", 2),
	})

	got, err := s.Resample(15 * time.Minute)
	require.NoError(t, err)
	require.Equal(t, 4, got.Len())
	assert.Equal(t, 1, got.Missing())

	pts := got.Points()
	assert.Equal(t, ts("2023-01-01 00:30:00"), pts[2].Timestamp)
	assert.False(t, pts[2].Valid)
	assert.Equal(t, []float64{1, 2, 4}, got.DropMissing())
	assert.Equal(t, 15*time.Minute, got.Step())
}

func TestResampleDropsOffGridReadings(t *testing.T) {
	s := NewSeries([]models.LoadReading{
		reading("2023-01-01 00:00:00", 1),
		reading("2023-01-01 00:07:00", 99),
		reading("2023-01-01 00:30:00", 3),
	})

	got, err := s.Resample(15 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []float64{1, 3}, got.DropMissing())
}

func TestResampleRejectsDuplicates(t *testing.T) {
	s := NewSeries([]models.LoadReading{
		reading("2023-01-01 00:00:00", 1),
		reading("2023-01-01 00:00:00", 2),
	})

	_, err := s.Resample(15 * time.Minute)
	assert.ErrorIs(t, err, ErrDuplicateTimestamp)
}

func TestResampleEmptyAndBadStep(t *testing.T) {
	got, err := NewSeries(nil).Resample(15 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	_, err = NewSeries(nil).Resample(0)
	assert.Error(t, err)
}

func TestSliceByTimeRangeIsInclusive(t *testing.T) {
	s, err := NewSeries([]models.LoadReading{
		reading("2023-01-01 00:00:00", 1),
		reading("2023-01-01 00:15:00", 2),
		reading("2023-01-01 00:30:00", 3),
		reading("2023-01-01 00:45:00", 4),
	}).Resample(15 * time.Minute)
	require.NoError(t, err)

	got := s.SliceByTimeRange(ts("2023-01-01 00:15:00"), ts("2023-01-01 00:30:00"))
	assert.Equal(t, []float64{2, 3}, got.DropMissing())

	open := s.SliceByTimeRange(time.Time{}, ts("2023-01-01 00:15:00"))
	assert.Equal(t, []float64{1, 2}, open.DropMissing())
}

func TestFingerprintTracksValues(t *testing.T) {
	a := NewSeries([]models.LoadReading{reading("2023-01-01 00:00:00", 1)})
	b := NewSeries([]models.LoadReading{reading("2023-01-01 00:00:00", 1)})
	c := NewSeries([]models.LoadReading{reading("2023-01-01 00:00:00", 2)})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestDropMissingSkipsNonFinite(t *testing.T) {
	s := NewSeries([]models.LoadReading{
		reading("2023-01-01 00:00:00", 1),
		reading("2023-01-01 00:15:00", math.Inf(1)),
		reading("2023-01-01 00:30:00", math.NaN()),
		reading("2023-01-01 00:45:00", 4),
	})
	assert.Equal(t, []float64{1, 4}, s.DropMissing())
}
