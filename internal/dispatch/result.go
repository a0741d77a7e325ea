package dispatch

import (
	"sort"
	"time"

	"creditrisk/internal/backend"
)

// DispatchResult is the joined outcome of one fan-out. Results holds exactly
// one entry per requested backend name.
type DispatchResult struct {
	ID           string
	Prompt       string
	Results      map[string]backend.InferenceResult
	Started      time.Time
	TotalElapsed time.Duration
}

// TotalElapsedSeconds returns the wall-clock span of the dispatch.
func (r DispatchResult) TotalElapsedSeconds() float64 { return r.TotalElapsed.Seconds() }

// Names returns the backend names in sorted order.
func (r DispatchResult) Names() []string {
	names := make([]string, 0, len(r.Results))
	for n := range r.Results {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Succeeded counts backends that completed.
func (r DispatchResult) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// AllFailed reports whether no backend completed.
func (r DispatchResult) AllFailed() bool {
	return len(r.Results) > 0 && r.Succeeded() == 0
}

// MaxElapsed returns the slowest individual backend time.
func (r DispatchResult) MaxElapsed() time.Duration {
	var m time.Duration
	for _, res := range r.Results {
		if res.Elapsed > m {
			m = res.Elapsed
		}
	}
	return m
}
