package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"LoadCast/internal/domain/models"
	applogger "LoadCast/pkg/logger"
)

const (
	DefaultTimeColumn = "Datetime"
	DefaultLoadColumn = "Load"
)

// CSVSeriesStore reads the load series from a CSV file on every call.
type CSVSeriesStore struct {
	path       string
	timeColumn string
	loadColumn string
	l          *applogger.Logger
}

func NewCSVSeriesStore(path, timeColumn, loadColumn string, l *applogger.Logger) *CSVSeriesStore {
	if timeColumn == "" {
		timeColumn = DefaultTimeColumn
	}
	if loadColumn == "" {
		loadColumn = DefaultLoadColumn
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CSVSeriesStore{path: path, timeColumn: timeColumn, loadColumn: loadColumn, l: l}
}

func (s *CSVSeriesStore) LoadReadings(ctx context.Context) ([]models.LoadReading, error) {
	start := time.Now()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	out, err := s.parse(ctx, f)
	if err != nil {
		s.l.Error("csv read error", applogger.String("path", s.path), applogger.Error(err))
		return nil, err
	}
	s.l.Debug("csv read ok",
		applogger.String("path", s.path),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)))
	return out, nil
}

func (s *CSVSeriesStore) parse(ctx context.Context, r io.Reader) ([]models.LoadReading, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("data file %s is empty", s.path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ti, li := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case s.timeColumn:
			ti = i
		case s.loadColumn:
			li = i
		}
	}
	if ti < 0 || li < 0 {
		return nil, fmt.Errorf("data file %s needs %q and %q columns", s.path, s.timeColumn, s.loadColumn)
	}

	out := make([]models.LoadReading, 0, 4096)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if ti >= len(rec) || li >= len(rec) {
			return nil, fmt.Errorf("line %d: %d fields", line, len(rec))
		}
		ts, err := parseTimestamp(rec[ti])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var (
			v  float64
			ok bool
		)
		if raw := strings.TrimSpace(rec[li]); raw != "" {
			v, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: load %q: %w", line, raw, err)
			}
			ok = true
		}
		// NaN and +-Inf count as missing.
		out = append(out, models.NewLoadReading(ts, v, ok))
	}
	return out, nil
}

// Health checks that the file exists and is a regular file.
func (s *CSVSeriesStore) Health(context.Context) error {
	fi, err := os.Stat(s.path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", s.path)
	}
	return nil
}

func (s *CSVSeriesStore) Close() error { return nil }
