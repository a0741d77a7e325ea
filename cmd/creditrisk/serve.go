package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"creditrisk/internal/config"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/httpapi"
	"creditrisk/internal/manager"
	"creditrisk/internal/registry"
)

type serveOptions struct {
	addr         string
	corsOrigins  string
	natsURL      string
	maxBodyBytes int64
	inferTimeout time.Duration
	httpLog      string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load every backend and serve the HTTP API and web UI",
		Example: "  creditrisk serve --addr :8000\n" +
			"  creditrisk serve -c creditrisk.yaml --workers 1",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = opts.addr
			}
			if flags.Changed("cors-origins") {
				cfg.CORSEnabled = true
				cfg.CORSOrigins = config.SplitCSV(opts.corsOrigins)
			}
			if flags.Changed("nats-url") {
				cfg.NATSURL = opts.natsURL
			}
			return serve(cmd.Context(), cfg, opts, root.log)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "HTTP listen address (default :8000)")
	f.StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS")
	f.StringVar(&opts.natsURL, "nats-url", "", "Publish dispatch events to this NATS server")
	f.Int64Var(&opts.maxBodyBytes, "max-body-bytes", 1<<20, "Maximum request body size")
	f.DurationVar(&opts.inferTimeout, "infer-timeout", 0, "Per-request inference timeout (0 disables)")
	f.StringVar(&opts.httpLog, "http-log", "info", "Default per-request log level: off|error|info|debug")
	return cmd
}

func serve(parent context.Context, cfg config.Config, opts *serveOptions, log zerolog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := registry.Resolve(cfg)
	if err != nil {
		return err
	}
	for _, name := range registry.Missing(cfg) {
		b, _ := cfg.Backend(name)
		log.Warn().Str("backend", name).Str("model", b.Model).Msg("model file not found; backend will be unavailable")
	}

	var pub dispatch.EventPublisher
	if cfg.NATSURL != "" {
		np, err := dispatch.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, log)
		if err != nil {
			// events are optional; serve without them
			log.Error().Err(err).Msg("nats unavailable; dispatch events disabled")
		} else {
			pub = np
			defer func() {
				if err := np.Close(); err != nil {
					log.Warn().Err(err).Msg("close nats publisher")
				}
			}()
		}
	}

	mgr := manager.New(manager.Options{Config: cfg, Logger: log, Publisher: pub})
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Error().Err(err).Msg("close backends")
		}
	}()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load in the background; /readyz reports progress.
	go func() {
		if err := mgr.Load(ctx); err != nil {
			return
		}
		log.Info().Strs("ready", mgr.ReadyNames()).Msg("backends loaded")
	}()

	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(opts.httpLog)
	httpapi.SetMaxBodyBytes(opts.maxBodyBytes)
	httpapi.SetInferTimeout(opts.inferTimeout)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	httpapi.SetBaseContext(ctx)
	httpapi.Version = version

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Int("backends", len(cfg.Backends)).Msg("creditrisk listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	return nil
}
