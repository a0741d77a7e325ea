package backend

import "context"

// InferenceAdapter abstracts the model runtime that backs a Handle.
// Concrete implementations (in-process llama.cpp, llama.cpp server) satisfy it.
type InferenceAdapter interface {
	// Start loads the model and prepares a reusable session with fixed
	// generation parameters. It may block for as long as weight loading takes.
	Start(model string, params InferParams) (InferSession, error)
}

// InferSession is a loaded model. Sessions are not required to be safe for
// concurrent use; Handle serializes calls to Generate.
type InferSession interface {
	// Generate streams fragments for the given prompt. onToken is invoked for
	// each fragment in order; a non-nil return stops generation.
	Generate(ctx context.Context, prompt string, onToken func(string) error) (FinalResult, error)
	// Close releases the model.
	Close() error
}

// InferParams are the fixed sampling parameters of a backend.
type InferParams struct {
	Temperature   float32  `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`
	TopP          float32  `json:"top_p,omitempty" yaml:"top_p,omitempty" toml:"top_p,omitempty"`
	TopK          int      `json:"top_k,omitempty" yaml:"top_k,omitempty" toml:"top_k,omitempty"`
	MaxTokens     int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" toml:"max_tokens,omitempty"`
	Stop          []string `json:"stop,omitempty" yaml:"stop,omitempty" toml:"stop,omitempty"`
	Seed          int      `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
	RepeatPenalty float32  `json:"repeat_penalty,omitempty" yaml:"repeat_penalty,omitempty" toml:"repeat_penalty,omitempty"`
	// Greedy forces temperature 0. A zero Temperature alone means "runtime
	// default".
	Greedy bool `json:"greedy,omitempty" yaml:"greedy,omitempty" toml:"greedy,omitempty"`
}

// LoadOptions configure how model weights are loaded by in-process runtimes.
type LoadOptions struct {
	CtxSize int `json:"ctx_size,omitempty" yaml:"ctx_size,omitempty" toml:"ctx_size,omitempty"`
	Threads int `json:"threads,omitempty" yaml:"threads,omitempty" toml:"threads,omitempty"`
	Batch   int `json:"batch,omitempty" yaml:"batch,omitempty" toml:"batch,omitempty"`
}

// FinalResult summarizes the generation after streaming.
type FinalResult struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage contains token accounting when the runtime reports it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
