package repository

import (
	pkgch "LoadCast/pkg/clickhouse"
	applogger "LoadCast/pkg/logger"
)

// CHSeriesStore reads the load series from a ClickHouse table.
type CHSeriesStore struct {
	*sqlSeriesStore
	client *pkgch.Client
}

func NewCHSeriesStore(client *pkgch.Client, spec TableSpec, l *applogger.Logger) (*CHSeriesStore, error) {
	inner, err := newSQLSeriesStore("clickhouse", client.DB(), spec, l)
	if err != nil {
		return nil, err
	}
	return &CHSeriesStore{sqlSeriesStore: inner, client: client}, nil
}

func (s *CHSeriesStore) Close() error {
	return s.client.Close()
}
