package testctl

import (
	"context"
	"os"
)

func runGoTests() error {
	info("==== Run Go tests ====")
	return runCmdStreaming(context.Background(), "go", "test", "./...")
}

// runLlamaTests runs the real-model suite against cfg.ModelsDir.
func runLlamaTests(cfg *Config) error {
	info("==== Run real-model tests (%s) ====", cfg.ModelsDir)
	env := map[string]string{"CREDITRISK_MODELS_DIR": cfg.ModelsDir}
	if dir := goLlamaDir(); dirExists(dir) {
		for k, v := range llamaEnv(dir) {
			env[k] = v
		}
	} else {
		warn("[llama] %s not found; relying on the ambient cgo environment", dir)
	}
	args := []string{"test", "-tags", "llama", "-run", "RealModels", "-v", "-timeout", "30m", "./internal/e2e/"}
	if envBool("TESTCTL_RACE", false) {
		args = append(args, "-race")
	}
	return runEnvCmdStreaming(context.Background(), env, "go", args...)
}

func dirExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
