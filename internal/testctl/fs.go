package testctl

import (
	"os"
	"path/filepath"

	"creditrisk/internal/config"
	"creditrisk/internal/registry"
)

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

func defaultModelsDir() string { return filepath.Join(homeDir(), "models", "llm") }

// hasModels reports whether dir holds the weights of at least one default
// backend.
func hasModels(dir string) bool {
	cfg := config.Defaults()
	cfg.ModelsDir = dir
	cfg, err := registry.Resolve(cfg)
	if err != nil {
		return false
	}
	return len(registry.Missing(cfg)) < len(cfg.Backends)
}
