package testctl

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Config carries the persistent flags shared by every command.
type Config struct {
	Port      int
	LogLvl    string
	ModelsDir string
	Backends  string
	Cuda      bool
	Timeout   int
}

// errUsage marks a command invoked without a required subcommand.
var errUsage = errors.New("usage")

func defaultConfig() *Config {
	return &Config{
		Port:      envInt("TESTCTL_PORT", 18080),
		LogLvl:    envStr("TESTCTL_LOG_LEVEL", "info"),
		ModelsDir: envStr("CREDITRISK_MODELS_DIR", defaultModelsDir()),
		Timeout:   envInt("TESTCTL_TIMEOUT", 600),
	}
}

// buildRootCmdWith constructs the command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "testctl",
		Short:         "Build, test and smoke-test creditrisk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetLogLevel(cfg.LogLvl)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errUsage
		},
	}
	pf := root.PersistentFlags()
	pf.IntVar(&cfg.Port, "port", cfg.Port, "Port for the smoke-test server (busy ports fall back to a free one)")
	pf.StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error")
	pf.StringVar(&cfg.ModelsDir, "models-dir", cfg.ModelsDir, "Directory holding the GGUF weights")

	installCmd := &cobra.Command{Use: "install", Short: "Install native dependencies", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("install requires a subcommand: go|go-llama.cpp")
	}}
	installGo := &cobra.Command{Use: "go", Short: "Download Go modules", RunE: func(cmd *cobra.Command, args []string) error { return fnInstallGo() }}
	installGoLlama := &cobra.Command{Use: "go-llama.cpp", Short: "Build the go-llama.cpp binding for -tags llama", Example: "  testctl install go-llama.cpp --cuda", RunE: func(cmd *cobra.Command, args []string) error {
		return fnInstallGoLlama(cfg.Cuda)
	}}
	installGoLlama.Flags().BoolVar(&cfg.Cuda, "cuda", false, "Build the binding with cuBLAS")
	installCmd.AddCommand(installGo, installGoLlama)

	testCmd := &cobra.Command{Use: "test", Short: "Run tests", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("test requires a subcommand: go|llama|all")
	}}
	testGo := &cobra.Command{Use: "go", Short: "Run Go tests (fake backends only)", RunE: func(cmd *cobra.Command, args []string) error { return fnRunGoTests() }}
	testLlama := &cobra.Command{Use: "llama", Short: "Run the real-model tests with -tags llama", RunE: func(cmd *cobra.Command, args []string) error {
		if !fnHasModels(cfg.ModelsDir) {
			return fmt.Errorf("no configured GGUF weights in %s", cfg.ModelsDir)
		}
		return fnRunLlamaTests(cfg)
	}}
	testAll := &cobra.Command{Use: "all", Short: "Go tests, then real-model tests when weights exist", RunE: func(cmd *cobra.Command, args []string) error {
		if err := fnRunGoTests(); err != nil {
			return err
		}
		if !fnHasModels(cfg.ModelsDir) {
			info("[testctl] No weights in %s, skipping real-model tests", cfg.ModelsDir)
			return nil
		}
		return fnRunLlamaTests(cfg)
	}}
	testCmd.AddCommand(testGo, testLlama, testAll)

	smokeCmd := &cobra.Command{Use: "smoke", Short: "Start creditrisk serve and run one parallel assessment", Example: "  testctl smoke --backends base,lora", RunE: func(cmd *cobra.Command, args []string) error {
		return fnSmoke(cfg)
	}}
	smokeCmd.Flags().StringVar(&cfg.Backends, "backends", "", "Comma-separated backends to query (default all)")
	smokeCmd.Flags().IntVar(&cfg.Timeout, "timeout", cfg.Timeout, "Seconds to wait for readiness and the answer")

	root.AddCommand(installCmd, testCmd, smokeCmd)
	return root
}

// MainWithArgs runs the CLI and returns the process exit code: 2 when a
// subcommand is missing, 1 on any other error.
func MainWithArgs(args []string) int {
	cfg := defaultConfig()
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/testctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
