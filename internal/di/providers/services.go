package providers

import (
	"github.com/samber/do/v2"

	"github.com/hydrahub/hydra-server/internal/config"
	"github.com/hydrahub/hydra-server/internal/logger"
	"github.com/hydrahub/hydra-server/internal/media"
	"github.com/hydrahub/hydra-server/internal/ratelimit"
	"github.com/hydrahub/hydra-server/internal/service"
	"github.com/hydrahub/hydra-server/internal/validation"
)

// ActionsHandle wraps the engagement throttle with shutdown capability.
type ActionsHandle struct {
	*ratelimit.Actions
}

// Shutdown implements do.Shutdownable.
func (h *ActionsHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideActionThrottle provides the per-visitor engagement throttle.
func ProvideActionThrottle(i do.Injector) (*ActionsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	actions := ratelimit.NewActions(ratelimit.ActionsConfig{
		ViewWindow:     cfg.RateLimit.ViewWindow,
		StarWindow:     cfg.RateLimit.StarWindow,
		BookmarkWindow: cfg.RateLimit.BookmarkWindow,
		SweepInterval:  cfg.RateLimit.SweepInterval,
	})

	return &ActionsHandle{Actions: actions}, nil
}

// SuggestLimiterHandle wraps the per-IP suggestion limiter with shutdown
// capability.
type SuggestLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *SuggestLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideSuggestLimiter provides the per-IP limiter guarding the
// autocomplete endpoint.
func ProvideSuggestLimiter(i do.Injector) (*SuggestLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.Server.SuggestRPS, cfg.Server.SuggestBurst)
	return &SuggestLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// ProvideMediaResolver provides the storage-key-to-URL resolver.
func ProvideMediaResolver(i do.Injector) (*media.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return media.NewResolver(cfg.Media.BaseURL), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalogService provides the scoped catalog read service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log.Logger), nil
}

// ProvideEngagementService provides the throttled engagement recorder.
func ProvideEngagementService(i do.Injector) (*service.EngagementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	actionsHandle := do.MustInvoke[*ActionsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEngagementService(storeHandle.Store, actionsHandle.Actions, log.Logger), nil
}

// ProvideIngestService provides the catalog write service used by seeding.
func ProvideIngestService(i do.Injector) (*service.IngestService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIngestService(storeHandle.Store, validator, log.Logger), nil
}
