package backend

import (
	"context"
	"sync"
	"time"
)

// fakeAdapter is a lightweight in-memory adapter used for tests.
type fakeAdapter struct {
	startErr   error
	genErr     error
	failAfter  int // fail after this many tokens when genErr is set; 0 = before any
	tokens     []string
	final      FinalResult
	delay      time.Duration
	panicWith  any
	receivedMP string

	mu        sync.Mutex
	inflight  int
	maxInfl   int
	prompts   []string
	closeHits int
}

func (f *fakeAdapter) Start(model string, params InferParams) (InferSession, error) {
	f.receivedMP = model
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &fakeSession{f: f}, nil
}

type fakeSession struct{ f *fakeAdapter }

func (s *fakeSession) Generate(ctx context.Context, prompt string, onToken func(string) error) (FinalResult, error) {
	f := s.f
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInfl {
		f.maxInfl = f.inflight
	}
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	for i, t := range f.tokens {
		if f.genErr != nil && i == f.failAfter {
			return FinalResult{}, f.genErr
		}
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return FinalResult{}, ctx.Err()
			}
		}
		if err := onToken(t); err != nil {
			return FinalResult{}, err
		}
	}
	if f.genErr != nil {
		return FinalResult{}, f.genErr
	}
	return f.final, nil
}

func (s *fakeSession) Close() error {
	s.f.mu.Lock()
	s.f.closeHits++
	s.f.mu.Unlock()
	return nil
}
