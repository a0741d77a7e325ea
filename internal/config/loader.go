package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"creditrisk/internal/backend"
)

// Backend kinds.
const (
	KindLlama       = "llama"
	KindLlamaServer = "llama_server"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are filled by Defaults/Normalize.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// Workers sizes the dispatch pool; 0 means one worker per backend.
	Workers   int    `json:"workers" yaml:"workers" toml:"workers"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	NATSURL           string `json:"nats_url" yaml:"nats_url" toml:"nats_url"`
	NATSSubjectPrefix string `json:"nats_subject_prefix" yaml:"nats_subject_prefix" toml:"nats_subject_prefix"`

	Backends []BackendConfig `json:"backends" yaml:"backends" toml:"backends"`
}

// BackendConfig describes one named inference backend.
type BackendConfig struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name" toml:"display_name"`
	// Kind is "llama" (in-process) or "llama_server" (HTTP). Empty means llama.
	Kind string `json:"kind" yaml:"kind" toml:"kind"`
	// Model is a gguf path, absolute or relative to ModelsDir.
	Model   string `json:"model" yaml:"model" toml:"model"`
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key" toml:"api_key"`
	// Preset selects base generation params ("base", "lora", "qlora").
	Preset string              `json:"preset" yaml:"preset" toml:"preset"`
	Params backend.InferParams `json:"params" yaml:"params" toml:"params"`
	Load   backend.LoadOptions `json:"load" yaml:"load" toml:"load"`
	// Disabled backends are reported but never loaded.
	Disabled bool `json:"disabled" yaml:"disabled" toml:"disabled"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Defaults returns the stock three-backend setup: the base model and the two
// fine-tuned variants, all read from ./models.
func Defaults() Config {
	return Config{
		Addr:      ":8000",
		ModelsDir: "./models",
		LogLevel:  "info",
		LogFormat: "console",
		Backends: []BackendConfig{
			{Name: backend.PresetBase, DisplayName: "Base Model", Kind: KindLlama, Model: "qwen2.5-3b-instruct-q8_0.gguf", Preset: backend.PresetBase},
			{Name: backend.PresetLoRA, DisplayName: "LoRA Fine-tuned", Kind: KindLlama, Model: "qwen2.5-3b--lora-f16.gguf", Preset: backend.PresetLoRA},
			{Name: backend.PresetQLoRA, DisplayName: "QLoRA Fine-tuned", Kind: KindLlama, Model: "qwen2.5-3b-f16-qlora.gguf", Preset: backend.PresetQLoRA},
		},
	}
}

// Normalize fills unspecified fields from Defaults and per-backend
// conventions. Backends are only defaulted when none are configured.
func (c Config) Normalize() Config {
	d := Defaults()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = d.ModelsDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if len(c.Backends) == 0 {
		c.Backends = d.Backends
	}
	out := make([]BackendConfig, len(c.Backends))
	for i, b := range c.Backends {
		if b.Kind == "" {
			b.Kind = KindLlama
		}
		if b.DisplayName == "" {
			b.DisplayName = b.Name
		}
		if b.Preset == "" {
			b.Preset = b.Name
		}
		out[i] = b
	}
	c.Backends = out
	return c
}

// reservedNames collide with the static routes under /inference/.
var reservedNames = map[string]bool{"parallel": true, "stream": true}

// Validate reports configuration errors that would make a backend unusable
// at load time rather than at first request.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	seen := map[string]bool{}
	for i, b := range c.Backends {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return fmt.Errorf("backends[%d]: empty name", i)
		}
		if strings.ContainsAny(name, ",/ ") {
			return fmt.Errorf("backend %q: name must not contain ',', '/' or spaces", name)
		}
		if reservedNames[strings.ToLower(name)] {
			return fmt.Errorf("backend %q: name is reserved by the HTTP API", name)
		}
		if seen[name] {
			return fmt.Errorf("backend %q: duplicate name", name)
		}
		seen[name] = true
		switch b.Kind {
		case "", KindLlama:
			if b.Model == "" {
				return fmt.Errorf("backend %q: model path required", name)
			}
		case KindLlamaServer:
			if b.BaseURL == "" {
				return fmt.Errorf("backend %q: base_url required", name)
			}
		default:
			return fmt.Errorf("backend %q: unknown kind %q", name, b.Kind)
		}
	}
	return nil
}

// Backend returns the named backend config.
func (c Config) Backend(name string) (BackendConfig, bool) {
	for _, b := range c.Backends {
		if b.Name == name {
			return b, true
		}
	}
	return BackendConfig{}, false
}

// BackendNames returns configured names in order.
func (c Config) BackendNames() []string {
	out := make([]string, len(c.Backends))
	for i, b := range c.Backends {
		out[i] = b.Name
	}
	return out
}
