package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/hydrahub/hydra-server/internal/api"
	"github.com/hydrahub/hydra-server/internal/config"
	"github.com/hydrahub/hydra-server/internal/logger"
	"github.com/hydrahub/hydra-server/internal/media"
	"github.com/hydrahub/hydra-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	engagementService := do.MustInvoke[*service.EngagementService](i)
	mediaResolver := do.MustInvoke[*media.Resolver](i)
	suggestHandle := do.MustInvoke[*SuggestLimiterHandle](i)

	server := api.NewServer(
		catalogService,
		engagementService,
		storeHandle.Store,
		mediaResolver,
		suggestHandle.KeyedRateLimiter,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
