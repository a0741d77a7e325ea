package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"creditrisk/internal/backend"
	"creditrisk/internal/config"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/manager"
	"creditrisk/pkg/types"
)

// Stream event types.
const (
	streamStart    = "start"
	streamPartial  = "partial"
	streamDone     = "done"
	streamComplete = "complete"
	streamError    = "error"
)

// eventWriter serializes NDJSON events from concurrent backends.
type eventWriter struct {
	mu    sync.Mutex
	enc   *json.Encoder
	flush func()
	err   error
}

func (ew *eventWriter) send(ev types.StreamEvent) {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	if ew.err != nil {
		return
	}
	if ew.err = ew.enc.Encode(ev); ew.err != nil {
		return
	}
	if ew.flush != nil {
		ew.flush()
	}
}

// stream godoc
// @Summary      Parallel assessment as an NDJSON stream
// @Description  Emits one "start" line per backend, "partial" lines carrying each backend's accumulated text, a "done" line per backend as it finishes and a final "complete" line with the joined result.
// @Tags         inference
// @Accept       json
// @Produce      application/x-ndjson
// @Param        backends  query  string                   false  "Comma-separated backend names"
// @Param        request   body   types.CreditRiskRequest  true   "Borrower record"
// @Success      200  {object}  types.StreamEvent
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /inference/stream [post]
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	names := config.SplitCSV(r.URL.Query().Get("backends"))
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	targets, err := h.resolveNames(names)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rl := newRequestLog(r, "stream")
	rl.begin(targets)
	ctx, cancel := inferenceContext(r)
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	out := io.Writer(w)
	if rl.lvl >= LevelDebug {
		out = io.MultiWriter(w, &lineLogger{log: rl.log})
	}
	ew := &eventWriter{enc: json.NewEncoder(out)}
	if f, ok := w.(http.Flusher); ok {
		ew.flush = f.Flush
	}

	for _, n := range targets {
		ew.send(types.StreamEvent{Type: streamStart, Backend: n})
	}
	res, err := h.svc.Observe(ctx, targets, rec, dispatch.Observer{
		Partial: func(name, text string) {
			ew.send(types.StreamEvent{Type: streamPartial, Backend: name, Text: text})
		},
		Done: func(r backend.InferenceResult) {
			mr := ToModelResponse(r)
			ew.send(types.StreamEvent{Type: streamDone, Backend: r.Backend, Result: &mr})
		},
	})
	if aborted(r) {
		streamClientsGone.Inc()
		rl.end(499, r.Context().Err())
		return
	}
	if err != nil && res.Results == nil {
		ew.send(types.StreamEvent{Type: streamError, Error: err.Error()})
		rl.end(http.StatusOK, err)
		return
	}
	summary := ToParallelResponse(res)
	ev := types.StreamEvent{Type: streamComplete, Summary: &summary}
	if err != nil {
		ev.Error = err.Error()
	}
	ew.send(ev)
	rl.end(http.StatusOK, err)
}

// resolveNames expands an empty selection to every backend and rejects
// unknown names before the stream starts.
func (h *handlers) resolveNames(names []string) ([]string, error) {
	known := map[string]bool{}
	var all []string
	for _, b := range h.svc.Backends() {
		known[b.Name] = true
		all = append(all, b.Name)
	}
	if len(names) == 0 {
		return all, nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !known[n] {
			return nil, manager.ErrBackendNotFound(n)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}
