package testctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const goLlamaRepo = "https://github.com/go-skynet/go-llama.cpp"

func installGo() error {
	info("==== Download Go modules ====")
	return runCmdStreaming(context.Background(), "go", "mod", "download")
}

// goLlamaDir is where the binding is cloned and built.
func goLlamaDir() string {
	return envStr("GO_LLAMA_DIR", filepath.Join(homeDir(), "src", "go-llama.cpp"))
}

// llamaEnv is the cgo environment needed to build with -tags llama.
func llamaEnv(dir string) map[string]string {
	return map[string]string{
		"C_INCLUDE_PATH": dir,
		"LIBRARY_PATH":   dir,
		"CGO_ENABLED":    "1",
	}
}

// installGoLlama clones (or updates) go-llama.cpp with its llama.cpp
// submodule and builds libbinding.a.
func installGoLlama(cuda bool) error {
	ctx := context.Background()
	dir := goLlamaDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return err
		}
		info("[llama] Cloning go-llama.cpp into %s", dir)
		if err := runCmdVerbose(ctx, "git", "clone", "--recurse-submodules", goLlamaRepo, dir); err != nil {
			return err
		}
	} else {
		info("[llama] Updating go-llama.cpp in %s", dir)
		_ = runCmdVerbose(ctx, "git", "-C", dir, "pull", "--ff-only")
		_ = runCmdVerbose(ctx, "git", "-C", dir, "submodule", "update", "--init", "--recursive")
	}

	env := map[string]string{}
	if cuda {
		env["BUILD_TYPE"] = "cublas"
	}
	info("[llama] Building libbinding.a (cuda=%v)", cuda)
	if err := RunCmd(ctx, Cmd{Path: "make", Args: []string{"libbinding.a"}, Dir: dir, Env: env, Stream: true}); err != nil {
		return err
	}
	lib := filepath.Join(dir, "libbinding.a")
	if fi, err := os.Stat(lib); err != nil || fi.IsDir() {
		return fmt.Errorf("libbinding.a not found at %s", lib)
	}
	info("[llama] Built: %s", lib)
	info("[llama] Build creditrisk with:")
	for k, v := range llamaEnv(dir) {
		info("    export %s=%s", k, v)
	}
	info("    go build -tags llama ./cmd/creditrisk")
	return nil
}
