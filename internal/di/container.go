// Package di provides dependency injection configuration for the Hydra server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/hydrahub/hydra-server/internal/config"
	"github.com/hydrahub/hydra-server/internal/di/providers"
	"github.com/hydrahub/hydra-server/internal/logger"
	"github.com/hydrahub/hydra-server/internal/media"
	"github.com/hydrahub/hydra-server/internal/service"
	"github.com/hydrahub/hydra-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Throttles
	do.Provide(injector, providers.ProvideActionThrottle)
	do.Provide(injector, providers.ProvideSuggestLimiter)

	// Business services
	do.Provide(injector, providers.ProvideMediaResolver)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideEngagementService)
	do.Provide(injector, providers.ProvideIngestService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap triggers lazy initialization of every service the serving
// path needs, in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ActionsHandle](injector)
	_ = do.MustInvoke[*providers.SuggestLimiterHandle](injector)
	_ = do.MustInvoke[*media.Resolver](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.EngagementService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
