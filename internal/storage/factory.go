package storage

import (
	"fmt"

	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/config"
)

// NewStore builds the backend selected by STORAGE_BACKEND.
func NewStore(cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "file":
		return NewFileStorage(cfg.UserFile, cfg.LogsFile, cfg.DocsFile, logger)
	case "sqlite":
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	case "postgres":
		return NewPostgresStorage(cfg.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
