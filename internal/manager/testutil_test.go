package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"creditrisk/internal/backend"
	"creditrisk/internal/config"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/prompt"
)

// fakeAdapter is a lightweight in-memory adapter used for tests.
type fakeAdapter struct {
	startErr  error
	genErr    error
	tokens    []string
	loadDelay time.Duration

	mu      sync.Mutex
	started []string
	params  []backend.InferParams
	closed  int
}

func (f *fakeAdapter) Start(model string, params backend.InferParams) (backend.InferSession, error) {
	if f.loadDelay > 0 {
		time.Sleep(f.loadDelay)
	}
	f.mu.Lock()
	f.started = append(f.started, model)
	f.params = append(f.params, params)
	f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &fakeSession{f: f}, nil
}

type fakeSession struct{ f *fakeAdapter }

func (s *fakeSession) Generate(ctx context.Context, p string, onToken func(string) error) (backend.FinalResult, error) {
	for _, t := range s.f.tokens {
		if err := ctx.Err(); err != nil {
			return backend.FinalResult{}, err
		}
		if err := onToken(t); err != nil {
			return backend.FinalResult{}, err
		}
	}
	if s.f.genErr != nil {
		return backend.FinalResult{}, s.f.genErr
	}
	return backend.FinalResult{FinishReason: "stop"}, nil
}

func (s *fakeSession) Close() error {
	s.f.mu.Lock()
	s.f.closed++
	s.f.mu.Unlock()
	return nil
}

func zerologNop() zerolog.Logger { return zerolog.Nop() }

var errNoWeights = errors.New("weights missing")

func testConfig(names ...string) config.Config {
	cfg := config.Config{}
	for _, n := range names {
		cfg.Backends = append(cfg.Backends, config.BackendConfig{Name: n, Model: n + ".gguf", Preset: n})
	}
	return cfg.Normalize()
}

func newTestManager(cfg config.Config, fakes map[string]*fakeAdapter, pub dispatch.EventPublisher) *Manager {
	return New(Options{
		Config:    cfg,
		Logger:    zerolog.Nop(),
		Publisher: pub,
		Adapters: func(b config.BackendConfig) (backend.InferenceAdapter, error) {
			f, ok := fakes[b.Name]
			if !ok {
				return nil, errors.New("no fake for " + b.Name)
			}
			return f, nil
		},
	})
}

// closingPublisher records Close calls.
type closingPublisher struct {
	*dispatch.MemoryPublisher
	closed bool
}

func (p *closingPublisher) Close() error { p.closed = true; return nil }

func sampleRecord() prompt.CreditRecord { return prompt.ExampleRecord() }
