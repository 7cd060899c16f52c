package di

import (
	"context"
	"fmt"
	"time"

	"LoadCast/internal/domain/repository"
	"LoadCast/internal/handler/api"
	internalrepo "LoadCast/internal/repository"
	"LoadCast/internal/services/features"
	"LoadCast/internal/services/inference"
	"LoadCast/internal/usecase"
	"LoadCast/pkg/cache"
	pkgch "LoadCast/pkg/clickhouse"
	"LoadCast/pkg/config"
	xhttp "LoadCast/pkg/http"
	"LoadCast/pkg/http/middleware"
	pkgkafka "LoadCast/pkg/kafka"
	applogger "LoadCast/pkg/logger"
	"LoadCast/pkg/metrics"
	"LoadCast/pkg/server"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// ProvideRegistry creates the Prometheus registry shared by every component.
func ProvideRegistry() *prometheus.Registry {
	return metrics.NewRegistry()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideKafkaProducer creates a Kafka producer when forecast events or the
// log collector need one, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, func(), error) {
	if !cfg.Events.Enabled && !cfg.Log.Collector.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithClientID("loadcast"),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithWriteTimeout(cfg.Events.PublishTimeout),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Events.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Events.BatchTimeout),
		pkgkafka.WithAutoCreateTopics(cfg.Events.AutoCreateTopics),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger creates the application logger and attaches the error-log
// collector when enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.Interval,
			CountThreshold: cfg.Log.Collector.Threshold,
			Topic:          cfg.Log.Collector.Topic,
			Publisher:      producer,
			PublishTimeout: cfg.Events.PublishTimeout,
		})
	}
	return l, nil
}

// retry runs op with exponential backoff bounded by startup.max_elapsed.
func retry(cfg *config.Config, l *applogger.Logger, name string, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Startup.MaxElapsed)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.Startup.MaxElapsed
	return backoff.RetryNotify(func() error {
		return op(ctx)
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		l.Warn("dependency not ready, retrying",
			applogger.String("dependency", name),
			applogger.Duration("wait", wait),
			applogger.Error(err))
	})
}

// ProvideSeriesStore opens the configured data store backend.
func ProvideSeriesStore(cfg *config.Config, l *applogger.Logger) (repository.SeriesStore, func(), error) {
	spec := internalrepo.TableSpec{
		Table:      cfg.Data.Table,
		TimeColumn: cfg.Data.TableTimeColumn,
		LoadColumn: cfg.Data.TableLoadColumn,
	}

	var (
		store repository.SeriesStore
		err   error
	)
	switch cfg.Data.Backend {
	case "clickhouse":
		store, err = openClickHouseStore(cfg, spec, l)
	case "sqlite":
		store, err = internalrepo.OpenSQLiteSeriesStore(cfg.Data.Path, spec, l)
	default:
		store = internalrepo.NewCSVSeriesStore(cfg.Data.Path, cfg.Data.TimeColumn, cfg.Data.LoadColumn, l)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s series store: %w", cfg.Data.Backend, err)
	}
	l.Info("series store ready", applogger.String("backend", cfg.Data.Backend))
	return store, func() { _ = store.Close() }, nil
}

func openClickHouseStore(cfg *config.Config, spec internalrepo.TableSpec, l *applogger.Logger) (*internalrepo.CHSeriesStore, error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, err
	}
	if err := retry(cfg, l, "clickhouse", client.Ping); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping %s: %w", client.Addr(), err)
	}
	store, err := internalrepo.NewCHSeriesStore(client, spec, l)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// ProvideModelProvider builds the lazily loaded model for the configured backend.
func ProvideModelProvider(cfg *config.Config, l *applogger.Logger, m repository.Metrics) *inference.CachedProvider {
	load := inference.NativeLoader(cfg.Model.Path)
	if cfg.Model.Backend == inference.BackendRemote {
		base := inference.NewHTTPServiceBase(cfg.Model.URL, cfg.Model.Timeout)
		load = inference.RemoteLoader(base, cfg.Model.Name)
	}
	p := inference.NewCachedProvider(cfg.Model.Backend, load,
		inference.WithProviderLogger(l),
		inference.WithProviderMetrics(m),
		inference.WithReloadPerRequest(cfg.Model.ReloadPerRequest),
		inference.WithLoadTimeout(cfg.Model.LoadTimeout),
	)

	if cfg.Model.Preload {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Model.LoadTimeout)
		defer cancel()
		if _, err := p.Model(ctx); err != nil {
			l.Warn("model preload failed, will retry on first request", applogger.Error(err))
		}
	}
	return p
}

// ProvideForecastCache creates the result cache, nil when caching is disabled.
func ProvideForecastCache(cfg *config.Config, l *applogger.Logger) (repository.ForecastCache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	var store cache.Store = cache.NewMemoryCache(
		cache.WithMaxEntries(cfg.Cache.MemoryEntries),
		cache.WithDefaultTTL(cfg.Cache.TTL),
	)
	if cfg.Cache.Redis.Enabled {
		rc := cache.NewRedisCache(
			cache.WithRedis(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithPrefix(cfg.Cache.Redis.Prefix),
		)
		if err := retry(cfg, l, "redis", rc.Ping); err != nil {
			_ = rc.Close()
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		store = cache.NewLayeredCache(store, rc)
	}

	fc := internalrepo.NewForecastCache(store, cfg.Cache.TTL)
	l.Info("forecast cache enabled",
		applogger.Bool("redis", cfg.Cache.Redis.Enabled),
		applogger.Duration("ttl", cfg.Cache.TTL))
	return fc, func() { _ = fc.Close() }, nil
}

// ProvideForecastPublisher creates the Kafka publisher for forecast events, nil when disabled.
func ProvideForecastPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.ForecastPublisher {
	if !cfg.Events.Enabled || producer == nil {
		return nil
	}
	return internalrepo.NewKafkaForecastPublisher(producer, cfg.Events.Topic)
}

// ProvideForecaster creates the forecast use case.
func ProvideForecaster(
	cfg *config.Config,
	store repository.SeriesStore,
	provider *inference.CachedProvider,
	fc repository.ForecastCache,
	pub repository.ForecastPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.LoadForecaster {
	return usecase.NewLoadForecaster(store, provider,
		usecase.WithCache(fc),
		usecase.WithPublisher(pub),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithWindowLength(cfg.Forecast.WindowLength),
		usecase.WithSelector(features.NewSelector(cfg.Forecast.Lookback, cfg.Forecast.Step)),
		usecase.WithPublishTimeout(cfg.Events.PublishTimeout),
	)
}

// ProvideHandler creates the Echo handler with data and model health checks.
func ProvideHandler(
	l *applogger.Logger,
	f *usecase.LoadForecaster,
	store repository.SeriesStore,
	provider *inference.CachedProvider,
) *api.ForecastEchoHandler {
	return api.NewForecastEchoHandler(l, f,
		api.HealthCheck{Name: "data", Check: store.Health},
		api.HealthCheck{Name: "model", Check: provider.Health},
	)
}

// ProvideHTTPServer creates the HTTP server.
func ProvideHTTPServer(cfg *config.Config, h *api.ForecastEchoHandler, l *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequestThreshold(cfg.Server.SlowRequest),
		xhttp.WithLogger(l),
	}
	if cfg.Server.CORS.Enabled {
		opts = append(opts, xhttp.WithCORS(&middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORS.AllowOrigins,
			AllowMethods: cfg.Server.CORS.AllowMethods,
			AllowHeaders: cfg.Server.CORS.AllowHeaders,
		}))
	}
	if cfg.Server.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRateLimit(middleware.NewLimiter(cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.PerSecond)))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(srv *xhttp.Server, l *applogger.Logger) *server.App {
	return server.New(srv,
		server.WithLogger(l),
		server.WithCloser("log collector", func() error {
			l.RemoveCollector()
			return nil
		}),
	)
}
