//go:build !llama

package backend

import "errors"

// llamaBuilt indicates this binary was compiled without llama support.
const llamaBuilt = false

// llamaAdapter is compiled when the 'llama' build tag is NOT set, keeping
// default builds CGO-free. Every Start fails so the backend reports
// BackendUnavailable instead of producing fake output.
type llamaAdapter struct {
	opts LoadOptions
}

// NewLlamaAdapter returns the stub runtime.
func NewLlamaAdapter(opts LoadOptions) InferenceAdapter {
	return &llamaAdapter{opts: DefaultLoadOptions.Merge(opts)}
}

func (a *llamaAdapter) Start(modelPath string, params InferParams) (InferSession, error) {
	return nil, errors.New("llama support not built (missing 'llama' build tag)")
}
