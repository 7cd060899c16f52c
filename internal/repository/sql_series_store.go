package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"LoadCast/internal/domain/models"
	applogger "LoadCast/pkg/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// TableSpec names the table and columns holding the load series.
type TableSpec struct {
	Table      string
	TimeColumn string
	LoadColumn string
}

func (s TableSpec) withDefaults() TableSpec {
	if s.Table == "" {
		s.Table = "load_readings"
	}
	if s.TimeColumn == "" {
		s.TimeColumn = "ts"
	}
	if s.LoadColumn == "" {
		s.LoadColumn = "load"
	}
	return s
}

func (s TableSpec) query() (string, error) {
	for _, id := range []string{s.Table, s.TimeColumn, s.LoadColumn} {
		if !identRe.MatchString(id) {
			return "", fmt.Errorf("invalid identifier %q", id)
		}
	}
	return fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s ASC", s.TimeColumn, s.LoadColumn, s.Table, s.TimeColumn), nil
}

// sqlSeriesStore reads the whole series from a database/sql table.
type sqlSeriesStore struct {
	backend string
	db      *sql.DB
	query   string
	table   string
	l       *applogger.Logger
}

func newSQLSeriesStore(backend string, db *sql.DB, spec TableSpec, l *applogger.Logger) (*sqlSeriesStore, error) {
	spec = spec.withDefaults()
	q, err := spec.query()
	if err != nil {
		return nil, fmt.Errorf("%s series store: %w", backend, err)
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &sqlSeriesStore{backend: backend, db: db, query: q, table: spec.Table, l: l}, nil
}

func (s *sqlSeriesStore) LoadReadings(ctx context.Context) ([]models.LoadReading, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		s.l.Error("series query error",
			applogger.String("backend", s.backend),
			applogger.String("table", s.table),
			applogger.Error(err))
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	out := make([]models.LoadReading, 0, 4096)
	for rows.Next() {
		var (
			rawTS interface{}
			load  sql.NullFloat64
		)
		if err := rows.Scan(&rawTS, &load); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", s.table, len(out)+1, err)
		}
		ts, err := scanTimestamp(rawTS)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.table, len(out)+1, err)
		}
		out = append(out, models.NewLoadReading(ts, load.Float64, load.Valid))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("series query ok",
		applogger.String("backend", s.backend),
		applogger.String("table", s.table),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)))
	return out, nil
}

func (s *sqlSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
