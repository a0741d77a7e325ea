package backend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// State is the lifecycle state of a Handle.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
	StateClosed  State = "closed"
)

// Spec describes one backend to load.
type Spec struct {
	// Name is the stable identifier used in requests (e.g. "qlora").
	Name string
	// DisplayName is shown in UIs and API responses (e.g. "QLoRA").
	DisplayName string
	// Model is the model path for in-process runtimes or the model id for
	// server runtimes.
	Model  string
	Params InferParams
}

// Handle exclusively owns one loaded model session. Loading is expensive, so
// a Handle is created once and reused; Ask calls against it are serialized
// because runtime sessions are not safe for concurrent generation.
type Handle struct {
	name    string
	display string
	model   string

	// slot has capacity 1: the single in-flight generation.
	slot chan struct{}

	mu       sync.RWMutex
	state    State
	loadErr  error
	sess     InferSession
	loadedIn time.Duration
	lastUsed time.Time
}

// Open loads spec with adapter. It always returns a Handle: a failed load
// leaves the handle in StateError so each request reports BackendUnavailable
// instead of aborting start-up.
func Open(spec Spec, adapter InferenceAdapter) *Handle {
	h := newHandle(spec)
	if adapter == nil {
		h.fail(errors.New("no runtime adapter configured"))
		return h
	}
	start := time.Now()
	sess, err := adapter.Start(spec.Model, spec.Params)
	if err != nil {
		h.fail(err)
		return h
	}
	h.mu.Lock()
	h.sess = sess
	h.state = StateReady
	h.loadedIn = time.Since(start)
	h.mu.Unlock()
	return h
}

// Unavailable returns a handle that reports cause on every request.
func Unavailable(spec Spec, cause error) *Handle {
	h := newHandle(spec)
	h.fail(cause)
	return h
}

func newHandle(spec Spec) *Handle {
	display := strings.TrimSpace(spec.DisplayName)
	if display == "" {
		display = spec.Name
	}
	return &Handle{
		name:    spec.Name,
		display: display,
		model:   spec.Model,
		slot:    make(chan struct{}, 1),
		state:   StateLoading,
	}
}

func (h *Handle) fail(err error) {
	h.mu.Lock()
	h.state = StateError
	h.loadErr = err
	h.mu.Unlock()
}

// Name returns the backend identifier.
func (h *Handle) Name() string { return h.name }

// DisplayName returns the human-friendly backend name.
func (h *Handle) DisplayName() string { return h.display }

// Model returns the configured model path or id.
func (h *Handle) Model() string { return h.model }

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Err returns the load error, if any.
func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadErr
}

// Ready reports whether the handle can serve requests.
func (h *Handle) Ready() bool { return h.State() == StateReady }

// Busy reports whether a generation is currently in flight.
func (h *Handle) Busy() bool { return len(h.slot) > 0 }

// LoadDuration returns how long the model took to load.
func (h *Handle) LoadDuration() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadedIn
}

// LastUsed returns when the handle last started a generation.
func (h *Handle) LastUsed() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastUsed
}

// acquire waits for the in-flight slot and returns the session to use.
// Callers must call release when acquire succeeds.
func (h *Handle) acquire(ctx context.Context) (InferSession, error) {
	if err := h.checkReady(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case h.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// The handle may have been closed while we waited.
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateReady {
		<-h.slot
		return nil, h.unavailableLocked()
	}
	h.lastUsed = time.Now()
	return h.sess, nil
}

func (h *Handle) release() { <-h.slot }

func (h *Handle) checkReady() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state != StateReady {
		return h.unavailableLocked()
	}
	return nil
}

func (h *Handle) unavailableLocked() error {
	switch h.state {
	case StateClosed:
		return ErrUnavailable(h.name, errors.New("closed"))
	case StateLoading:
		return ErrUnavailable(h.name, errors.New("still loading"))
	default:
		return ErrUnavailable(h.name, h.loadErr)
	}
}

// Close waits for any in-flight generation and releases the session.
// It is safe to call more than once.
func (h *Handle) Close() error {
	h.slot <- struct{}{}
	defer h.release()
	h.mu.Lock()
	sess := h.sess
	h.sess = nil
	h.state = StateClosed
	h.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Close()
}
