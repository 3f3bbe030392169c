// Package di provides dependency injection configuration for the timeline service.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-timeline/internal/config"
	"github.com/listenupapp/listenup-timeline/internal/di/providers"
	"github.com/listenupapp/listenup-timeline/internal/logger"
	"github.com/listenupapp/listenup-timeline/internal/probe"
	"github.com/listenupapp/listenup-timeline/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Configuration is read from the process command line and environment.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	registerProviders(injector)
	return injector
}

// NewContainerWithConfig creates a container around an already loaded config.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	registerProviders(injector)
	return injector
}

func registerProviders(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)

	// Timeline layer
	do.Provide(injector, providers.ProvideProber)
	do.Provide(injector, providers.ProvideTimelineService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[probe.Prober](injector)
	_ = do.MustInvoke[*service.TimelineService](injector)

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
