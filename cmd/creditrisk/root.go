package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"creditrisk/internal/config"
)

// rootOptions holds persistent flags and the configuration they resolve to.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	modelsDir  string
	workers    int

	cfg config.Config
	log zerolog.Logger
}

// buildRootCmd constructs the command tree.
func buildRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "creditrisk",
		Short:         "Credit risk assessment with several language models in parallel",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before CREDITRISK_* variables are read")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: console|json")
	pf.StringVar(&opts.modelsDir, "models-dir", "", "Directory holding the gguf model files")
	pf.IntVar(&opts.workers, "workers", 0, "Dispatch worker count (0 = one per backend, 1 = sequential)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return opts.resolve(cmd)
	}

	root.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newFormatCmd(opts),
		newBackendsCmd(opts),
	)
	return root
}

// resolve layers configuration: defaults, config file, .env and CREDITRISK_*
// variables, then explicitly set flags.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return err
	}
	var cfg config.Config
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg, err := cfg.ApplyEnv(nil)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("models-dir") {
		cfg.ModelsDir = o.modelsDir
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	o.cfg, o.log = cfg, log
	return nil
}
