package features

import (
	"testing"
	"time"

	"LoadCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridSeries builds a resampled series of consecutive values starting at from.
func gridSeries(t *testing.T, from time.Time, n int) Series {
	t.Helper()
	rs := make([]models.LoadReading, n)
	for i := range rs {
		rs[i] = models.LoadReading{Timestamp: from.Add(time.Duration(i) * DefaultStep), Load: float64(i), Valid: true}
	}
	s, err := NewSeries(rs).Resample(DefaultStep)
	require.NoError(t, err)
	return s
}

func TestSelectorRanges(t *testing.T) {
	sel := NewSelector(0, 0)
	ref := ts("2023-02-01 00:00:00")

	r := sel.Ranges(ref, 24)
	assert.Equal(t, ts("2023-01-31 23:45:00"), r.TrainEnd)
	assert.Equal(t, ts("2023-01-31 22:00:00"), r.TestStart)
	assert.Equal(t, ts("2023-02-01 23:45:00"), r.TestEnd)
}

func TestSelectCounts(t *testing.T) {
	from := ts("2023-01-01 00:00:00")
	s := gridSeries(t, from, 60*96) // two months
	sel := NewSelector(DefaultLookback, DefaultStep)

	got, err := sel.Select(s, ts("2023-02-01 00:00:00"), 24)
	require.NoError(t, err)

	assert.Len(t, got.Test, 8+96)
	assert.Len(t, got.Train, 31*96)
	// test starts two hours before the reference date
	assert.Equal(t, float64(31*96-8), got.Test[0])
	// train ends one step before the reference date
	assert.Equal(t, float64(31*96-1), got.Train[len(got.Train)-1])
}

func TestSelectSkipsMissing(t *testing.T) {
	s, err := NewSeries([]models.LoadReading{
		reading("2023-01-01 00:00:00", 1),
		reading("2023-01-01 01:00:00", 5),
		reading("2023-01-01 02:00:00", 9),
	}).Resample(DefaultStep)
	require.NoError(t, err)

	got, err := NewSelector(0, 0).Select(s, ts("2023-01-01 02:00:00"), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5, 9}, got.Test)
	assert.Equal(t, []float64{1, 5}, got.Train)
}

func TestSelectEmptyTestRange(t *testing.T) {
	s := gridSeries(t, ts("2023-01-01 00:00:00"), 96)

	_, err := NewSelector(0, 0).Select(s, ts("2022-06-01 00:00:00"), 24)
	assert.ErrorIs(t, err, ErrEmptyTestRange)

	_, err = NewSelector(0, 0).Select(NewSeries(nil), ts("2023-01-01 00:00:00"), 24)
	assert.ErrorIs(t, err, ErrEmptyTestRange)
}
