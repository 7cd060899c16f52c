package cache

import "time"

// Options collects the settings of every Store in this package. Each
// constructor reads only the fields that apply to it.
type Options struct {
	// Redis
	Addr     string
	Password string
	DB       int
	PoolSize int
	Prefix   string

	// Memory
	MaxEntries      int
	DefaultTTL      time.Duration
	CleanupInterval time.Duration

	// Layered: how long a backfilled entry stays in the first layer.
	FirstLayerTTL time.Duration
}

type Option func(*Options)

func newOptions(opts []Option) Options {
	o := Options{
		Addr:            "localhost:6379",
		PoolSize:        10,
		Prefix:          "loadcast",
		MaxEntries:      1000,
		DefaultTTL:      time.Hour,
		CleanupInterval: 5 * time.Minute,
		FirstLayerTTL:   5 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRedis sets the server address, password and database number.
func WithRedis(addr, password string, db int) Option {
	return func(o *Options) {
		o.Addr = addr
		o.Password = password
		o.DB = db
	}
}

// WithPrefix namespaces every Redis key as "<prefix>:<key>".
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithMaxEntries caps the memory store before LRU eviction.
func WithMaxEntries(n int) Option {
	return func(o *Options) { o.MaxEntries = n }
}

// WithDefaultTTL applies to memory Set calls with a non-positive ttl.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *Options) { o.DefaultTTL = ttl }
}

// WithCleanup sets how often expired memory entries are purged; 0 disables the sweeper.
func WithCleanup(interval time.Duration) Option {
	return func(o *Options) { o.CleanupInterval = interval }
}

func WithFirstLayerTTL(ttl time.Duration) Option {
	return func(o *Options) { o.FirstLayerTTL = ttl }
}
