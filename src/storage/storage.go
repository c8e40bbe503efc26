package storage

import (
	"fmt"

	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"
)

// Open builds and initializes the settings store selected by the config.
func Open(cfg *models.MConfig) (interfaces.ISettingsStore, error) {
	var store interfaces.ISettingsStore
	switch cfg.Storage.DBType {
	case "postgres":
		store = NewPostgresSettingsDB(cfg, logger.NewLogger(cfg, "PostgresDB"))
	case "sqlite", "":
		store = NewSQLiteSettingsDB(cfg, logger.NewLogger(cfg, "SQLiteDB"))
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Storage.DBType)
	}

	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Storage.DBType, err)
	}
	return store, nil
}
