package commands

import (
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/straja-ai/rakshak/internal/config"
	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/estimator"
	"github.com/straja-ai/rakshak/internal/intel"
	"github.com/straja-ai/rakshak/internal/logging"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRegistry loads the model directory once. Artifacts that fail are
// logged and left out; scans that need them answer unavailable.
func loadRegistry(cfg *config.Config, logger logging.Logger) *estimator.Registry {
	registry := estimator.NewRegistry(cfg.Models.Dir, estimator.LoadOptions{
		SharedLibraryPath: cfg.Models.SharedLibraryPath,
		Logger:            logger,
		RetireAfter:       cfg.Models.RetireAfter,
	})
	for _, err := range registry.Reload() {
		logger.Warn("model artifact not loaded", logging.Error(err))
	}
	return registry
}

// offline is a service for one-shot CLI use. Nothing is recorded.
type offline struct {
	cfg      *config.Config
	logger   logging.Logger
	registry *estimator.Registry
	svc      *detect.Service
}

func newOffline(cmd *cobra.Command) (*offline, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	registry := loadRegistry(cfg, logger)
	return &offline{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		svc:      detect.NewService(intel.NewPatternBank(), registry, detect.WithLogger(logger)),
	}, nil
}

func (o *offline) Close() {
	_ = o.registry.Close()
	_ = o.logger.Sync()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
