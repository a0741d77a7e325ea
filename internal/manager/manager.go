package manager

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"creditrisk/internal/backend"
	"creditrisk/internal/config"
	"creditrisk/internal/dispatch"
)

// Options configure a Manager.
type Options struct {
	// Config lists the backends; it should be normalized and resolved.
	Config config.Config
	Logger zerolog.Logger
	// Adapters overrides runtime construction; nil uses DefaultAdapterFactory.
	Adapters AdapterFactory
	// Publisher receives dispatch events. If it implements io.Closer it is
	// closed with the Manager.
	Publisher dispatch.EventPublisher
}

// Manager holds one handle per configured backend, created once and reused
// for every request until Close.
type Manager struct {
	cfg      config.Config
	log      zerolog.Logger
	adapters AdapterFactory
	pub      dispatch.EventPublisher

	pool *dispatch.Pool
	disp *dispatch.Dispatcher

	mu      sync.RWMutex
	handles map[string]*backend.Handle
	closed  bool
	started time.Time

	loadOnce sync.Once
	loaded   chan struct{}
}

// New constructs a Manager. No model is loaded until Load.
func New(opts Options) *Manager {
	adapters := opts.Adapters
	if adapters == nil {
		adapters = DefaultAdapterFactory(opts.Logger)
	}
	workers := opts.Config.Workers
	if workers <= 0 {
		workers = len(opts.Config.Backends)
	}
	pool := dispatch.NewPool(workers)
	return &Manager{
		cfg:      opts.Config,
		log:      opts.Logger.With().Str("component", "manager").Logger(),
		adapters: adapters,
		pub:      opts.Publisher,
		pool:     pool,
		disp:     dispatch.New(dispatch.Options{Pool: pool, Publisher: opts.Publisher, Logger: opts.Logger}),
		handles:  make(map[string]*backend.Handle, len(opts.Config.Backends)),
		started:  time.Now(),
		loaded:   make(chan struct{}),
	}
}

// Load opens every configured backend concurrently. A backend that fails to
// load is kept as unavailable and never blocks the others. Load returns when
// every backend has settled or ctx ends; loading continues in the background
// in the latter case. Only the first call loads.
func (m *Manager) Load(ctx context.Context) error {
	m.loadOnce.Do(func() { go m.loadAll() })
	select {
	case <-m.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) loadAll() {
	defer close(m.loaded)
	var wg sync.WaitGroup
	for _, b := range m.cfg.Backends {
		wg.Add(1)
		go func(b config.BackendConfig) {
			defer wg.Done()
			h := m.open(b)
			m.mu.Lock()
			if m.closed {
				m.mu.Unlock()
				_ = h.Close()
				return
			}
			m.handles[b.Name] = h
			m.mu.Unlock()
		}(b)
	}
	wg.Wait()
}

func (m *Manager) open(b config.BackendConfig) *backend.Handle {
	log := m.log.With().Str("backend", b.Name).Str("kind", b.Kind).Logger()
	spec, known := specFor(b)
	if !known {
		log.Warn().Str("preset", b.Preset).Msg("unknown preset; using explicit params only")
	}
	if b.Disabled {
		log.Info().Msg("backend disabled")
		return backend.Unavailable(spec, errors.New("disabled by configuration"))
	}
	adapter, err := m.adapters(b)
	if err != nil {
		log.Error().Err(err).Msg("no adapter")
		return backend.Unavailable(spec, err)
	}
	log.Info().Str("model", b.Model).Msg("loading backend")
	h := backend.Open(spec, adapter)
	if err := h.Err(); err != nil {
		backendReady.WithLabelValues(b.Name).Set(0)
		log.Error().Err(err).Msg("backend failed to load")
		return h
	}
	backendReady.WithLabelValues(b.Name).Set(1)
	backendLoadSeconds.WithLabelValues(b.Name).Set(h.LoadDuration().Seconds())
	log.Info().Dur("took", h.LoadDuration()).Msg("backend ready")
	return h
}

// Config returns the configuration the Manager was built with.
func (m *Manager) Config() config.Config { return m.cfg }

// Backends returns the configured backends in order.
func (m *Manager) Backends() []config.BackendConfig {
	out := make([]config.BackendConfig, len(m.cfg.Backends))
	copy(out, m.cfg.Backends)
	return out
}

// Handle returns the loaded handle for name. ok is false for unknown names;
// h is nil while the backend is still loading.
func (m *Manager) Handle(name string) (h *backend.Handle, ok bool) {
	if _, known := m.cfg.Backend(name); !known {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handles[name], true
}

// handleFor resolves name to a handle usable by Ask: unknown names are an
// error, backends still loading are reported unavailable.
func (m *Manager) handleFor(name string) (*backend.Handle, error) {
	b, ok := m.cfg.Backend(name)
	if !ok {
		return nil, ErrBackendNotFound(name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if h := m.handles[name]; h != nil {
		return h, nil
	}
	spec, _ := specFor(b)
	return backend.Unavailable(spec, errors.New("still loading")), nil
}

// Close releases every handle, stops the worker pool and closes the event
// publisher. It waits for in-flight generations.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	handles := make([]*backend.Handle, 0, len(m.handles))
	for _, h := range m.handles {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
		backendReady.WithLabelValues(h.Name()).Set(0)
	}
	m.pool.Close()
	if c, ok := m.pub.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
