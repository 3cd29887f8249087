// Package storage selects and constructs the persistence backend.
package storage

import (
	"fmt"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/storage/filedb"
	"github.com/foliohq/folio/internal/storage/sqldb"
)

// New builds the Store named by the storage config. The driver decision
// happens exactly once, here; call sites only ever see the interface.
func New(cfg common.StorageConfig, logger *common.Logger) (interfaces.Store, error) {
	switch cfg.Driver {
	case "file", "":
		store, err := filedb.New(cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		logger.Info().Str("driver", "file").Str("path", cfg.Path).Msg("Storage ready")
		return store, nil

	case "sqlite":
		store, err := sqldb.New(cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		logger.Info().Str("driver", "sqlite").Str("path", cfg.Path).Msg("Storage ready")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q (want file or sqlite)", cfg.Driver)
	}
}
