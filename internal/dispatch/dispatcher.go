package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"creditrisk/internal/backend"
)

// PartialFunc receives a backend's accumulated text as it grows. It is called
// concurrently for different backends and in order for any one backend.
type PartialFunc func(backendName, text string)

// Observer receives progress for every backend of a dispatch. Either field
// may be nil. Done is called once per backend as soon as its result is
// final, before the dispatch as a whole completes.
type Observer struct {
	Partial PartialFunc
	Done    func(res backend.InferenceResult)
}

// Options configure a Dispatcher.
type Options struct {
	// Pool runs the per-backend jobs. Required.
	Pool      *Pool
	Publisher EventPublisher
	Logger    zerolog.Logger
}

// Dispatcher runs one prompt against several backends concurrently.
type Dispatcher struct {
	pool      *Pool
	publisher EventPublisher
	log       zerolog.Logger
}

// New constructs a Dispatcher. A nil Publisher drops events.
func New(opts Options) *Dispatcher {
	pub := opts.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Dispatcher{pool: opts.Pool, publisher: pub, log: opts.Logger}
}

// DispatchAll asks every handle for formatted and waits for all of them.
// Duplicate names are asked once. The result holds one entry per distinct
// requested name whatever happened to it; if every backend failed the
// result is returned together with an *AggregateError.
func (d *Dispatcher) DispatchAll(ctx context.Context, formatted string, handles []*backend.Handle, onPartial PartialFunc) (DispatchResult, error) {
	return d.Observe(ctx, formatted, handles, Observer{Partial: onPartial})
}

// Observe is DispatchAll with per-backend completion notifications.
func (d *Dispatcher) Observe(ctx context.Context, formatted string, handles []*backend.Handle, obs Observer) (DispatchResult, error) {
	onPartial := obs.Partial
	uniq := dedupe(handles)
	if len(uniq) == 0 {
		return DispatchResult{}, ErrNoBackends
	}
	id := uuid.NewString()
	log := d.log.With().Str("dispatch_id", id).Int("backends", len(uniq)).Logger()

	dispatchInflight.Inc()
	defer dispatchInflight.Dec()

	start := time.Now()
	d.publisher.Publish(Event{Name: EventDispatchStart, DispatchID: id, Time: start, Fields: map[string]any{"backends": names(uniq)}})
	log.Debug().Msg("dispatch start")

	results := make([]backend.InferenceResult, len(uniq))
	filled := make([]bool, len(uniq))
	var wg sync.WaitGroup
	for i, h := range uniq {
		var cb func(string)
		if onPartial != nil {
			name := h.Name()
			cb = func(text string) { onPartial(name, text) }
		}
		wg.Add(1)
		job := func() {
			defer wg.Done()
			res := backend.Ask(ctx, h, formatted, cb)
			results[i] = res
			filled[i] = true
			d.record(id, res, obs.Done)
		}
		if err := d.pool.Submit(ctx, job); err != nil {
			wg.Done()
			res := notScheduled(h, formatted, err)
			results[i] = res
			filled[i] = true
			d.record(id, res, obs.Done)
		}
	}
	wg.Wait()
	total := time.Since(start)

	out := DispatchResult{
		ID:           id,
		Prompt:       formatted,
		Results:      make(map[string]backend.InferenceResult, len(uniq)),
		Started:      start,
		TotalElapsed: total,
	}
	for i, h := range uniq {
		res := results[i]
		if !filled[i] {
			// The job panicked outside Ask.
			res = notScheduled(h, formatted, fmt.Errorf("worker aborted"))
			d.record(id, res, obs.Done)
		}
		out.Results[h.Name()] = res
	}
	dispatchDuration.Observe(total.Seconds())
	d.publisher.Publish(Event{Name: EventDispatchDone, DispatchID: id, Time: time.Now(), Fields: map[string]any{
		"total_elapsed_seconds": total.Seconds(),
		"succeeded":             out.Succeeded(),
	}})
	log.Info().Dur("total", total).Int("succeeded", out.Succeeded()).Msg("dispatch done")

	if out.AllFailed() {
		return out, &AggregateError{Result: out}
	}
	return out, nil
}

func (d *Dispatcher) record(id string, res backend.InferenceResult, done func(backend.InferenceResult)) {
	backendRequestsTotal.WithLabelValues(res.Backend, string(res.Status)).Inc()
	if res.Status == backend.StatusOK {
		backendDuration.WithLabelValues(res.Backend).Observe(res.ElapsedSeconds())
	}
	fields := map[string]any{
		"status":          string(res.Status),
		"elapsed_seconds": res.ElapsedSeconds(),
	}
	if res.Err != nil {
		fields["error"] = res.Err.Error()
	}
	if l, ok := res.Label(); ok {
		fields["label"] = string(l)
	}
	d.publisher.Publish(Event{Name: EventBackendDone, DispatchID: id, Backend: res.Backend, Time: time.Now(), Fields: fields})
	ev := d.log.Debug()
	if !res.OK() {
		ev = d.log.Warn().Err(res.Err)
	}
	ev.Str("dispatch_id", id).Str("backend", res.Backend).Str("status", string(res.Status)).Dur("elapsed", res.Elapsed).Msg("backend done")
	if done != nil {
		done(res)
	}
}

func notScheduled(h *backend.Handle, formatted string, err error) backend.InferenceResult {
	return backend.InferenceResult{
		Backend:     h.Name(),
		DisplayName: h.DisplayName(),
		Prompt:      formatted,
		Status:      backend.StatusFailed,
		Err:         fmt.Errorf("not scheduled: %w", err),
	}
}

func dedupe(handles []*backend.Handle) []*backend.Handle {
	seen := make(map[string]bool, len(handles))
	out := make([]*backend.Handle, 0, len(handles))
	for _, h := range handles {
		if h == nil || seen[h.Name()] {
			continue
		}
		seen[h.Name()] = true
		out = append(out, h)
	}
	return out
}

func names(hs []*backend.Handle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Name()
	}
	return out
}
