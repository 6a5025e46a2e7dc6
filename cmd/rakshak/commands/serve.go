package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/straja-ai/rakshak/internal/config"
	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/estimator"
	"github.com/straja-ai/rakshak/internal/intel"
	"github.com/straja-ai/rakshak/internal/ledger"
	"github.com/straja-ai/rakshak/internal/logging"
	"github.com/straja-ai/rakshak/internal/scanevents"
	"github.com/straja-ai/rakshak/internal/server"
	"github.com/straja-ai/rakshak/internal/telemetry"
)

func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detection API",
		Long: `Serve the detection API and the analytics dashboard.

Models are loaded from models.dir at startup. With models.watch set the
directory is watched and reloaded when artifacts change.`,
		Example: `  # Serve with rakshak.yaml from the working directory
  rakshak serve

  # Override the listen address
  rakshak serve --config /etc/rakshak.yaml --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := loadRegistry(cfg, logger)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warn("closing models failed", logging.Error(err))
		}
	}()
	logger.Info("models loaded",
		logging.String("dir", cfg.Models.Dir),
		logging.Strings("artifacts", registry.Current().Loaded()),
	)

	if cfg.Models.Watch {
		watcher, err := estimator.NewWatcher(registry, logger, cfg.Models.WatchDebounce)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  cfg.Telemetry.ServiceName,
		Version:  server.Version,
	}, logger)
	if err != nil {
		return err
	}

	sinks, err := buildSinks(cfg.Events)
	if err != nil {
		for _, s := range sinks {
			_ = s.Close(ctx)
		}
		tel.Shutdown(ctx)
		return err
	}
	emitter := scanevents.NewEmitter(scanevents.EmitterConfig{
		QueueSize:       cfg.Events.QueueSize,
		Workers:         cfg.Events.Workers,
		ShutdownTimeout: cfg.Events.ShutdownTimeout,
		PreviewMode:     cfg.Events.PreviewMode,
		ModelVersion:    func() string { return registry.Current().Version },
		Logger:          logger,
	}, sinks)

	led := ledger.New(ledger.WithMaxEntries(cfg.Ledger.MaxEntries))
	svc := detect.NewService(intel.NewPatternBank(), registry,
		detect.WithLogger(logger),
		detect.WithTracer(tel.Tracer()),
		detect.WithRecorder(detect.MultiRecorder(led, tel, emitter)),
	)

	srv, err := server.New(cfg, svc, led, logger)
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		emitter.Close(closeCtx)
		tel.Shutdown(closeCtx)
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil && !errors.Is(serr, context.Canceled) {
		logger.Warn("http shutdown", logging.Error(serr))
	}
	emitter.Close(shutdownCtx)
	tel.Shutdown(shutdownCtx)
	return err
}
