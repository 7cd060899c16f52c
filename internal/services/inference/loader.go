package inference

import (
	"context"
	"errors"
	"sync"
	"time"

	"LoadCast/internal/domain/repository"
	"LoadCast/internal/domain/service"
	"LoadCast/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const (
	BackendNative = "native"
	BackendRemote = "remote"
)

// ErrModelNotLoaded is reported by Health before the first successful load.
var ErrModelNotLoaded = errors.New("model not loaded")

// LoadFunc produces a ready model.
type LoadFunc func(ctx context.Context) (service.Model, error)

// NativeLoader reads and compiles the JSON artifact at path.
func NativeLoader(path string) LoadFunc {
	return func(ctx context.Context) (service.Model, error) {
		a, raw, err := ReadArtifact(path)
		if err != nil {
			return nil, err
		}
		return NewNetwork(a, raw)
	}
}

// RemoteLoader resolves an available version of name on the model server.
func RemoteLoader(base *HTTPServiceBase, name string) LoadFunc {
	return func(ctx context.Context) (service.Model, error) {
		return fetchRemoteModel(ctx, base, name)
	}
}

// ProviderOption configures CachedProvider.
type ProviderOption func(*CachedProvider)

func WithProviderLogger(l *logger.Logger) ProviderOption {
	return func(p *CachedProvider) { p.log = l }
}

func WithProviderMetrics(m repository.Metrics) ProviderOption {
	return func(p *CachedProvider) { p.metrics = m }
}

// WithReloadPerRequest disables caching so every call loads the model again.
func WithReloadPerRequest(on bool) ProviderOption {
	return func(p *CachedProvider) { p.perRequest = on }
}

// WithLoadTimeout bounds a single load attempt.
func WithLoadTimeout(d time.Duration) ProviderOption {
	return func(p *CachedProvider) { p.timeout = d }
}

// CachedProvider loads the model on first use and shares it process-wide.
// Concurrent first callers wait on one load. A failed load is not remembered.
type CachedProvider struct {
	backend    string
	load       LoadFunc
	log        *logger.Logger
	metrics    repository.Metrics
	perRequest bool
	timeout    time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	model service.Model
}

func NewCachedProvider(backend string, load LoadFunc, opts ...ProviderOption) *CachedProvider {
	p := &CachedProvider{backend: backend, load: load, log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Model returns the cached model, loading it if needed.
func (p *CachedProvider) Model(ctx context.Context) (service.Model, error) {
	if !p.perRequest {
		p.mu.RLock()
		m := p.model
		p.mu.RUnlock()
		if m != nil {
			return m, nil
		}
	}

	ch := p.group.DoChan(p.backend, func() (interface{}, error) {
		return p.loadOnce(ctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(service.Model), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *CachedProvider) loadOnce(ctx context.Context) (service.Model, error) {
	if !p.perRequest {
		p.mu.RLock()
		m := p.model
		p.mu.RUnlock()
		if m != nil {
			return m, nil
		}
	}

	// The load outlives a caller that gives up; other waiters still need it.
	lctx := context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(lctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	m, err := p.load(lctx)
	if p.metrics != nil {
		p.metrics.RecordModelLoad(p.backend, err)
	}
	if err != nil {
		p.log.Error("model load failed", logger.String("backend", p.backend), logger.Error(err))
		return nil, err
	}
	p.log.Info("model loaded",
		logger.String("backend", p.backend),
		logger.String("model", m.Name()),
		logger.Duration("took_ms", time.Since(start)))

	if !p.perRequest {
		p.mu.Lock()
		p.model = m
		p.mu.Unlock()
	}
	return m, nil
}

// Loaded reports whether a model is cached.
func (p *CachedProvider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil
}

// Health loads the model if it is not cached yet.
func (p *CachedProvider) Health(ctx context.Context) error {
	if p.Loaded() {
		return nil
	}
	if _, err := p.Model(ctx); err != nil {
		return errors.Join(ErrModelNotLoaded, err)
	}
	return nil
}
