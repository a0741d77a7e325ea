package types

// Model is a gguf weights file found in the models directory.
type Model struct {
	// File name, used as the identifier.
	// example: qwen2.5-3b-f16-qlora.gguf
	ID string `json:"id" example:"qwen2.5-3b-f16-qlora.gguf"`
	// Absolute path to the file on disk.
	// example: /srv/models/qwen2.5-3b-f16-qlora.gguf
	Path string `json:"path" example:"/srv/models/qwen2.5-3b-f16-qlora.gguf"`
	// File size in bytes.
	// example: 6178316288
	SizeBytes int64 `json:"size_bytes" example:"6178316288"`
	// Backends configured to load this file.
	Backends []string `json:"backends,omitempty"`
}
