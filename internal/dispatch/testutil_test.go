package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"creditrisk/internal/backend"
)

// scriptedAdapter streams fixed fragments and optionally fails after failAt
// of them (failAt < 0 never fails).
type scriptedAdapter struct {
	frags  []string
	failAt int
	delay  time.Duration
	gate   chan struct{}
}

func (a *scriptedAdapter) Start(model string, params backend.InferParams) (backend.InferSession, error) {
	return &scriptedSession{a: a}, nil
}

type scriptedSession struct{ a *scriptedAdapter }

func (s *scriptedSession) Generate(ctx context.Context, prompt string, onToken func(string) error) (backend.FinalResult, error) {
	if s.a.gate != nil {
		select {
		case <-s.a.gate:
		case <-ctx.Done():
			return backend.FinalResult{}, ctx.Err()
		}
	}
	for i, f := range s.a.frags {
		if i == s.a.failAt {
			return backend.FinalResult{}, errors.New("native generation aborted")
		}
		if s.a.delay > 0 {
			time.Sleep(s.a.delay)
		}
		if err := onToken(f); err != nil {
			return backend.FinalResult{}, err
		}
	}
	if s.a.failAt >= len(s.a.frags) {
		return backend.FinalResult{}, errors.New("native generation aborted")
	}
	return backend.FinalResult{FinishReason: "stop"}, nil
}

func (s *scriptedSession) Close() error { return nil }

func okHandle(name string, delay time.Duration, frags ...string) *backend.Handle {
	return backend.Open(backend.Spec{Name: name}, &scriptedAdapter{frags: frags, failAt: -1, delay: delay})
}

func failingHandle(name string, failAt int, frags ...string) *backend.Handle {
	return backend.Open(backend.Spec{Name: name}, &scriptedAdapter{frags: frags, failAt: failAt})
}

func newTestDispatcher(t *testing.T, size int, pub EventPublisher) *Dispatcher {
	t.Helper()
	p := NewPool(size)
	t.Cleanup(p.Close)
	return New(Options{Pool: p, Publisher: pub, Logger: zerolog.Nop()})
}

// partialRecorder collects per-backend progress values.
type partialRecorder struct {
	mu   sync.Mutex
	seen map[string][]string
}

func newPartialRecorder() *partialRecorder { return &partialRecorder{seen: map[string][]string{}} }

func (r *partialRecorder) record(name, text string) {
	r.mu.Lock()
	r.seen[name] = append(r.seen[name], text)
	r.mu.Unlock()
}
