package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

// Client owns a database/sql pool opened through the ClickHouse driver.
type Client struct {
	db  *sql.DB
	cfg Config
}

// NewClient opens a pool without dialing. Use Ping to verify connectivity.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Host == "" {
		return nil, errors.New("clickhouse: host is required")
	}

	db := ch.OpenDB(options(cfg))
	db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	return &Client{db: db, cfg: cfg}, nil
}

func options(cfg Config) *ch.Options {
	o := &ch.Options{
		Addr:        []string{cfg.Addr()},
		Auth:        ch.Auth{Database: cfg.Database, Username: cfg.User, Password: cfg.Password},
		DialTimeout: cfg.Dial,
		ReadTimeout: cfg.Read,
		Protocol:    ch.Native,
	}
	if cfg.HTTP {
		o.Protocol = ch.HTTP
	}
	if cfg.MaxExec > 0 {
		o.Settings = ch.Settings{"max_execution_time": int(cfg.MaxExec.Seconds())}
	}
	return o
}

func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Addr() string { return c.cfg.Addr() }

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("clickhouse ping %s: %w", c.Addr(), err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
