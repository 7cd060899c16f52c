package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCSVSeriesStoreReadsColumns(t *testing.T) {
	path := writeCSV(t, "Datetime,Temperature,Load\n"+
		"2023-01-01 00:00:00,4.5,101.5\n"+
		"2023-01-01 00:15:00,4.4,\n"+
		"2023-01-01 00:30:00,4.1,99\n")
	s := NewCSVSeriesStore(path, "", "", nil)

	got, err := s.LoadReadings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, 101.5, got[0].Load)
	assert.True(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.Equal(t, 99.0, got[2].Load)
	assert.NoError(t, s.Health(context.Background()))
}

func TestCSVSeriesStoreErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"missing column", "Datetime,Value\n2023-01-01 00:00:00,1\n"},
		{"bad timestamp", "Datetime,Load\nyesterday,1\n"},
		{"bad load", "Datetime,Load\n2023-01-01 00:00:00,abc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCSVSeriesStore(writeCSV(t, tt.body), "", "", nil)
			_, err := s.LoadReadings(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestCSVSeriesStoreMissingFile(t *testing.T) {
	s := NewCSVSeriesStore(filepath.Join(t.TempDir(), "nope.csv"), "", "", nil)
	_, err := s.LoadReadings(context.Background())
	assert.Error(t, err)
	assert.Error(t, s.Health(context.Background()))
}

func TestCSVSeriesStoreReadsFreshEachCall(t *testing.T) {
	path := writeCSV(t, "Datetime,Load\n2023-01-01 00:00:00,1\n")
	s := NewCSVSeriesStore(path, "", "", nil)

	first, err := s.LoadReadings(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("Datetime,Load\n2023-01-01 00:00:00,1\n2023-01-01 00:15:00,2\n"), 0o600))
	second, err := s.LoadReadings(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2023, 5, 6, 7, 15, 0, 0, time.UTC)
	for _, s := range []string{"2023-05-06 07:15:00", "2023-05-06T07:15:00", "2023-05-06T07:15:00+02:00", "2023-05-06 07:15"} {
		got, err := parseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
}

func TestCSVSeriesStoreNonFiniteLoadIsMissing(t *testing.T) {
	path := writeCSV(t, "Datetime,Load\n"+
		"2023-01-01 00:00:00,inf\n"+
		"2023-01-01 00:15:00,-Inf\n"+
		"2023-01-01 00:30:00,NaN\n"+
		"2023-01-01 00:45:00,42\n")

	got, err := NewCSVSeriesStore(path, "", "", nil).LoadReadings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, r := range got[:3] {
		assert.False(t, r.Valid, r.Timestamp)
		assert.Zero(t, r.Load)
	}
	assert.True(t, got[3].Valid)
	assert.Equal(t, 42.0, got[3].Load)
}
