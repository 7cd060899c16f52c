package clickhouse

import (
	"net"
	"strconv"
	"time"
)

// Config describes one ClickHouse server and the pool opened against it.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	HTTP     bool

	Pool    PoolConfig
	Dial    time.Duration
	Read    time.Duration
	MaxExec time.Duration
}

// PoolConfig sizes the database/sql pool.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

func defaultConfig() Config {
	return Config{
		Port:     9000,
		Database: "default",
		User:     "default",
		Pool:     PoolConfig{MaxOpen: 5, MaxIdle: 2, MaxLifetime: 5 * time.Minute},
		Dial:     5 * time.Second,
		Read:     30 * time.Second,
	}
}

// Addr is host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type ClientOption func(*Config)

// WithAddr sets host and port. A non-positive port keeps the default.
func WithAddr(host string, port int) ClientOption {
	return func(c *Config) {
		c.Host = host
		if port > 0 {
			c.Port = port
		}
	}
}

func WithDatabase(database string) ClientOption {
	return func(c *Config) { c.Database = database }
}

func WithCredentials(user, password string) ClientOption {
	return func(c *Config) {
		c.User = user
		c.Password = password
	}
}

func WithPool(maxOpen, maxIdle int) ClientOption {
	return func(c *Config) {
		c.Pool.MaxOpen = maxOpen
		c.Pool.MaxIdle = maxIdle
	}
}

// WithTimeouts sets dial and read timeouts.
func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(c *Config) {
		c.Dial = dial
		c.Read = read
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(on bool) ClientOption {
	return func(c *Config) { c.HTTP = on }
}

// WithMaxExecutionTime sets the server-side max_execution_time per query.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(c *Config) { c.MaxExec = d }
}
