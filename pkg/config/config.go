package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"LoadCast/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Data        DataConfig       `yaml:"data"`
	Model       ModelConfig      `yaml:"model"`
	Forecast    ForecastConfig   `yaml:"forecast"`
	Cache       CacheConfig      `yaml:"cache"`
	Events      EventsConfig     `yaml:"events"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Startup     StartupConfig    `yaml:"startup"`
}

type ServerConfig struct {
	Host            string          `yaml:"host" default:"0.0.0.0"`
	Port            int             `yaml:"port" default:"8000" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" default:"10s" validate:"gt=0"`
	SlowRequest     time.Duration   `yaml:"slow_request" default:"5s"`
	CORS            CORSConfig      `yaml:"cors"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

type CORSConfig struct {
	Enabled      bool     `yaml:"enabled" default:"true"`
	AllowOrigins []string `yaml:"allow_origins" default:"[\"*\"]"`
	AllowMethods []string `yaml:"allow_methods" default:"[\"GET\",\"OPTIONS\"]"`
	AllowHeaders []string `yaml:"allow_headers"`
}

type RateLimitConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Burst     int     `yaml:"burst" default:"20" validate:"min=1"`
	PerSecond float64 `yaml:"per_second" default:"10" validate:"gt=0"`
}

type LogConfig struct {
	Level     string          `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format    string          `yaml:"format" default:"json" validate:"oneof=json console"`
	Output    string          `yaml:"output" default:"stdout"`
	Collector CollectorConfig `yaml:"collector"`
}

// CollectorConfig ships deduplicated error logs through the events producer.
type CollectorConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Topic     string        `yaml:"topic" default:"loadcast.errors"`
	Interval  time.Duration `yaml:"interval" default:"30s"`
	Threshold int           `yaml:"threshold" default:"100"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics" validate:"startswith=/"`
}

type DataConfig struct {
	Backend    string `yaml:"backend" default:"csv" validate:"oneof=csv clickhouse sqlite"`
	Path       string `yaml:"path" default:"./processed.csv"`
	TimeColumn string `yaml:"time_column" default:"Datetime"`
	LoadColumn string `yaml:"load_column" default:"Load"`
	// Table settings apply to the clickhouse and sqlite backends.
	Table           string `yaml:"table" default:"load_readings"`
	TableTimeColumn string `yaml:"table_time_column" default:"ts"`
	TableLoadColumn string `yaml:"table_load_column" default:"load"`
}

type ModelConfig struct {
	Backend          string        `yaml:"backend" default:"native" validate:"oneof=native remote"`
	Path             string        `yaml:"path" default:"./lstm_model_2_year.json"`
	URL              string        `yaml:"url" validate:"omitempty,url"`
	Name             string        `yaml:"name" default:"load"`
	Timeout          time.Duration `yaml:"timeout" default:"30s"`
	LoadTimeout      time.Duration `yaml:"load_timeout" default:"60s"`
	ReloadPerRequest bool          `yaml:"reload_per_request"`
	Preload          bool          `yaml:"preload"`
}

type ForecastConfig struct {
	WindowLength int           `yaml:"window_length" default:"8" validate:"min=1"`
	Lookback     time.Duration `yaml:"lookback" default:"2h" validate:"gt=0"`
	Step         time.Duration `yaml:"step" default:"15m" validate:"gt=0"`
}

type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	TTL           time.Duration `yaml:"ttl" default:"1h"`
	MemoryEntries int           `yaml:"memory_entries" default:"256" validate:"min=1"`
	Redis         RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"loadcast"`
}

type EventsConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Brokers          []string      `yaml:"brokers"`
	Topic            string        `yaml:"topic" default:"loadcast.forecasts"`
	Compression      string        `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
	PublishTimeout   time.Duration `yaml:"publish_timeout" default:"2s"`
	RequiredAcks     int           `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	MaxAttempts      int           `yaml:"max_attempts" default:"3" validate:"min=1"`
	BatchTimeout     time.Duration `yaml:"batch_timeout" default:"50ms"`
	AutoCreateTopics bool          `yaml:"auto_create_topics"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"default"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

// StartupConfig bounds how long dependencies are retried while booting.
type StartupConfig struct {
	MaxElapsed time.Duration `yaml:"max_elapsed" default:"30s"`
}

var validate = validator.New()

// Load reads path on top of the defaults. An empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.LookupEnv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		return v, ok && v != ""
	}
	if v, ok := get("LOADCAST_DATA_BACKEND"); ok {
		c.Data.Backend = v
	}
	if v, ok := get("LOADCAST_DATA_PATH"); ok {
		c.Data.Path = v
	}
	if v, ok := get("LOADCAST_MODEL_BACKEND"); ok {
		c.Model.Backend = v
	}
	if v, ok := get("LOADCAST_MODEL_PATH"); ok {
		c.Model.Path = v
	}
	if v, ok := get("LOADCAST_MODEL_URL"); ok {
		c.Model.URL = v
	}
	if v, ok := get("LOADCAST_PORT"); ok {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v, ok := get("LOADCAST_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("KAFKA_BROKERS"); ok {
		c.Events.Brokers = util.SplitCSV(v)
	}
	if v, ok := get("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := get("CLICKHOUSE_HOST"); ok {
		c.ClickHouse.Host = v
	}
}

// Validate checks tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Data.Backend {
	case "csv", "sqlite":
		if c.Data.Path == "" {
			return fmt.Errorf("data.path is required for the %s backend", c.Data.Backend)
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for the clickhouse backend")
		}
	}
	switch c.Model.Backend {
	case "native":
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required for the native backend")
		}
	case "remote":
		if c.Model.URL == "" {
			return fmt.Errorf("model.url is required for the remote backend")
		}
	}
	if (c.Events.Enabled || c.Log.Collector.Enabled) && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers is required when events or the log collector are enabled")
	}
	return nil
}
