package providers

import (
	"github.com/samber/do/v2"

	"github.com/hydrahub/hydra-server/internal/config"
	"github.com/hydrahub/hydra-server/internal/logger"
	"github.com/hydrahub/hydra-server/internal/store/sqlite"
)

// StoreHandle wraps the catalog store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the catalog database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Catalog database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: db}, nil
}
