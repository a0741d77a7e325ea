package manager

import (
	"fmt"

	"github.com/rs/zerolog"

	"creditrisk/internal/backend"
	"creditrisk/internal/config"
)

// AdapterFactory builds the runtime adapter for one backend.
type AdapterFactory func(b config.BackendConfig) (backend.InferenceAdapter, error)

// DefaultAdapterFactory maps backend kinds to the built-in runtimes.
func DefaultAdapterFactory(log zerolog.Logger) AdapterFactory {
	return func(b config.BackendConfig) (backend.InferenceAdapter, error) {
		switch b.Kind {
		case "", config.KindLlama:
			return backend.NewLlamaAdapter(backend.DefaultLoadOptions.Merge(b.Load)), nil
		case config.KindLlamaServer:
			return backend.NewLlamaServerAdapter(backend.ServerOptions{
				BaseURL: b.BaseURL,
				APIKey:  b.APIKey,
			}, log.With().Str("backend", b.Name).Logger()), nil
		default:
			return nil, fmt.Errorf("unknown backend kind %q", b.Kind)
		}
	}
}

// specFor builds the handle spec: preset parameters overlaid with the
// backend's explicit params.
func specFor(b config.BackendConfig) (backend.Spec, bool) {
	params, ok := backend.Preset(b.Preset)
	return backend.Spec{
		Name:        b.Name,
		DisplayName: b.DisplayName,
		Model:       b.Model,
		Params:      params.Merge(b.Params),
	}, ok || b.Preset == ""
}
