package repository

import (
	"database/sql"
	"fmt"

	applogger "LoadCast/pkg/logger"

	_ "modernc.org/sqlite"
)

// SQLiteSeriesStore reads the load series from a local SQLite database.
type SQLiteSeriesStore struct {
	*sqlSeriesStore
	db *sql.DB
}

// OpenSQLiteSeriesStore opens path read-only unless it is ":memory:".
func OpenSQLiteSeriesStore(path string, spec TableSpec, l *applogger.Logger) (*SQLiteSeriesStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return NewSQLiteSeriesStore(db, spec, l)
}

// NewSQLiteSeriesStore wraps an already open database.
func NewSQLiteSeriesStore(db *sql.DB, spec TableSpec, l *applogger.Logger) (*SQLiteSeriesStore, error) {
	inner, err := newSQLSeriesStore("sqlite", db, spec, l)
	if err != nil {
		return nil, err
	}
	return &SQLiteSeriesStore{sqlSeriesStore: inner, db: db}, nil
}

func (s *SQLiteSeriesStore) Close() error {
	return s.db.Close()
}
