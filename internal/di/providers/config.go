// Package providers contains dependency injection providers for the timeline service.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-timeline/internal/config"
	"github.com/listenupapp/listenup-timeline/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger. Logs go to stderr so command
// output on stdout stays machine readable.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting ListenUp Timeline",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"prefer_ffprobe", cfg.Probe.PreferFFprobe,
		"skip_parts_without_markers", cfg.Timeline.SkipPartsWithoutMarkers,
	)

	return log, nil
}
