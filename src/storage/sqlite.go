package storage

import (
	"fmt"

	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteSettingsDB struct {
	SettingsDB
}

// -----------------------------------------------------------------------------

func NewSQLiteSettingsDB(cfg *models.MConfig, log *logger.Logger) *SQLiteSettingsDB {
	return &SQLiteSettingsDB{SettingsDB{Config: cfg, Logger: log, table: "settings"}}
}

// -----------------------------------------------------------------------------

func (d *SQLiteSettingsDB) Initialize() error {
	db, err := sqlx.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to open sqlite database '%s': %w", d.Config.Storage.DBPath, err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		d.Logger.Warning("Failed to set busy timeout: %v", err)
	}

	return d.createTable()
}
