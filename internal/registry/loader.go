package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"creditrisk/internal/config"
	"creditrisk/pkg/types"
)

// LoadDir scans a directory for *.gguf files. ID is the file name; Path is
// the absolute file path. Results are sorted by ID.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		m := types.Model{ID: name, Path: filepath.Join(abs, name)}
		if info, err := e.Info(); err == nil {
			m.SizeBytes = info.Size()
		}
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// ResolveModelPath returns the absolute path of a backend model file. Paths
// that are neither absolute nor home-relative are joined onto modelsDir.
func ResolveModelPath(modelsDir, model string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("empty model path")
	}
	p, err := ExpandHome(model)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) && !strings.HasPrefix(model, "~") {
		dir, err := ExpandHome(modelsDir)
		if err != nil {
			return "", err
		}
		p = filepath.Join(dir, p)
	}
	return filepath.Abs(p)
}

// Resolve rewrites every in-process backend's model path to an absolute
// path under cfg.ModelsDir. Server backends are left untouched.
func Resolve(cfg config.Config) (config.Config, error) {
	out := make([]config.BackendConfig, len(cfg.Backends))
	for i, b := range cfg.Backends {
		if b.Kind == "" || b.Kind == config.KindLlama {
			p, err := ResolveModelPath(cfg.ModelsDir, b.Model)
			if err != nil {
				return cfg, fmt.Errorf("backend %q: %w", b.Name, err)
			}
			b.Model = p
		}
		out[i] = b
	}
	cfg.Backends = out
	return cfg, nil
}

// Annotate marks each discovered model with the backends that load it.
// cfg should already be resolved.
func Annotate(models []types.Model, cfg config.Config) []types.Model {
	byPath := map[string][]string{}
	for _, b := range cfg.Backends {
		if b.Kind == "" || b.Kind == config.KindLlama {
			byPath[b.Model] = append(byPath[b.Model], b.Name)
		}
	}
	out := make([]types.Model, len(models))
	for i, m := range models {
		m.Backends = byPath[m.Path]
		out[i] = m
	}
	return out
}

// Missing lists in-process backends whose model file does not exist.
func Missing(cfg config.Config) []string {
	var out []string
	for _, b := range cfg.Backends {
		if b.Kind != "" && b.Kind != config.KindLlama {
			continue
		}
		if _, err := os.Stat(b.Model); err != nil {
			out = append(out, b.Name)
		}
	}
	return out
}
