package manager

import (
	"context"

	"creditrisk/internal/backend"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/prompt"
)

// Ask formats rec and runs it on the named backend. Errors are returned for
// invalid records, unknown names and a closed manager; everything that
// happens on the backend itself is reported in the result's Status.
func (m *Manager) Ask(ctx context.Context, name string, rec prompt.CreditRecord, onPartial func(text string)) (backend.InferenceResult, error) {
	if err := prompt.Validate(rec); err != nil {
		return backend.InferenceResult{}, err
	}
	h, err := m.handleFor(name)
	if err != nil {
		return backend.InferenceResult{}, err
	}
	res := backend.Ask(ctx, h, prompt.Format(rec), onPartial)
	m.log.Debug().Str("backend", name).Str("status", string(res.Status)).Dur("elapsed", res.Elapsed).Msg("ask")
	return res, nil
}

// DispatchAll formats rec once and runs it on every named backend in
// parallel. No names means every configured backend. The record is
// validated and all names are resolved before any backend runs.
func (m *Manager) DispatchAll(ctx context.Context, names []string, rec prompt.CreditRecord, onPartial dispatch.PartialFunc) (dispatch.DispatchResult, error) {
	return m.Observe(ctx, names, rec, dispatch.Observer{Partial: onPartial})
}

// Observe is DispatchAll with per-backend completion notifications.
func (m *Manager) Observe(ctx context.Context, names []string, rec prompt.CreditRecord, obs dispatch.Observer) (dispatch.DispatchResult, error) {
	if err := prompt.Validate(rec); err != nil {
		return dispatch.DispatchResult{}, err
	}
	if len(names) == 0 {
		names = m.cfg.BackendNames()
	}
	handles := make([]*backend.Handle, 0, len(names))
	for _, n := range names {
		h, err := m.handleFor(n)
		if err != nil {
			return dispatch.DispatchResult{}, err
		}
		handles = append(handles, h)
	}
	return m.disp.Observe(ctx, prompt.Format(rec), handles, obs)
}
