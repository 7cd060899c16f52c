package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE load_readings (ts TEXT NOT NULL PRIMARY KEY, load REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO load_readings (ts, load) VALUES
		('2023-01-01 00:30:00', 3.5),
		('2023-01-01 00:00:00', 1.5),
		('2023-01-01 00:15:00', NULL)`)
	require.NoError(t, err)
	return db
}

func TestSQLiteSeriesStoreLoadReadings(t *testing.T) {
	s, err := NewSQLiteSeriesStore(setupSQLite(t), TableSpec{}, nil)
	require.NoError(t, err)

	got, err := s.LoadReadings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, 1.5, got[0].Load)
	assert.False(t, got[1].Valid)
	assert.True(t, got[2].Valid)
	assert.NoError(t, s.Health(context.Background()))
}

func TestSQLiteSeriesStoreMissingTable(t *testing.T) {
	s, err := NewSQLiteSeriesStore(setupSQLite(t), TableSpec{Table: "other"}, nil)
	require.NoError(t, err)

	_, err = s.LoadReadings(context.Background())
	assert.Error(t, err)
}

func TestTableSpecRejectsInjection(t *testing.T) {
	for _, spec := range []TableSpec{
		{Table: "load; DROP TABLE x"},
		{Table: "ok", TimeColumn: "ts)"},
		{Table: "a.b.c"},
	} {
		_, err := spec.withDefaults().query()
		assert.Error(t, err, spec.Table)
	}

	q, err := TableSpec{Table: "grid.load_15m"}.withDefaults().query()
	require.NoError(t, err)
	assert.Equal(t, "SELECT ts, load FROM grid.load_15m ORDER BY ts ASC", q)
}

func TestSQLiteSeriesStoreInfiniteLoadIsMissing(t *testing.T) {
	db := setupSQLite(t)
	_, err := db.Exec(`INSERT INTO load_readings (ts, load) VALUES ('2023-01-01 00:45:00', 9e999)`)
	require.NoError(t, err)
	s, err := NewSQLiteSeriesStore(db, TableSpec{}, nil)
	require.NoError(t, err)

	got, err := s.LoadReadings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.False(t, got[3].Valid)
}
