package manager

import (
	"creditrisk/internal/backend"
	"creditrisk/internal/registry"
	"creditrisk/pkg/types"
)

// Ready reports whether at least one backend can serve requests.
func (m *Manager) Ready() bool {
	return len(m.ReadyNames()) > 0
}

// Loaded reports whether every backend has finished loading, successfully
// or not.
func (m *Manager) Loaded() bool {
	select {
	case <-m.loaded:
		return true
	default:
		return false
	}
}

// ReadyNames lists ready backends in configuration order.
func (m *Manager) ReadyNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, b := range m.cfg.Backends {
		if h := m.handles[b.Name]; h != nil && h.Ready() {
			out = append(out, b.Name)
		}
	}
	return out
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		Backends:    make([]types.BackendStatus, 0, len(m.cfg.Backends)),
		Workers:     m.pool.Size(),
		BusyWorkers: m.pool.Busy(),
		Ready:       []string{},
	}
	for _, b := range m.cfg.Backends {
		st := types.BackendStatus{Name: b.Name, DisplayName: b.DisplayName, State: string(backend.StateLoading)}
		if h := m.handles[b.Name]; h != nil {
			st.State = string(h.State())
			st.Busy = h.Busy()
			if err := h.Err(); err != nil {
				st.Error = err.Error()
			}
			st.LoadSeconds = h.LoadDuration().Seconds()
			if lu := h.LastUsed(); !lu.IsZero() {
				st.LastUsedUnixMs = lu.UnixMilli()
			}
			if h.Ready() {
				resp.Ready = append(resp.Ready, b.Name)
			}
		}
		resp.Backends = append(resp.Backends, st)
	}
	return resp
}

// Health reports per-backend readiness keyed by name.
func (m *Manager) Health() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.cfg.Backends))
	for _, b := range m.cfg.Backends {
		h := m.handles[b.Name]
		out[b.Name] = h != nil && h.Ready()
	}
	return out
}

// Models lists gguf files in the models directory, annotated with the
// backends that load them.
func (m *Manager) Models() ([]types.Model, error) {
	models, err := registry.LoadDir(m.cfg.ModelsDir)
	if err != nil {
		return nil, err
	}
	return registry.Annotate(models, m.cfg), nil
}
