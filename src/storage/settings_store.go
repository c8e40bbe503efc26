package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/jmoiron/sqlx"
)

// SettingsDB is the key/value settings table shared by both SQL backends.
type SettingsDB struct {
	Config *models.MConfig
	DB     *sqlx.DB
	Logger *logger.Logger
	table  string
}

// -----------------------------------------------------------------------------

func (d *SettingsDB) createTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		);
	`, d.table)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.table, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SettingsDB) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := d.DB.Rebind(fmt.Sprintf("SELECT value FROM %s WHERE key = ?", d.table))
	err := d.DB.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *SettingsDB) SetSetting(ctx context.Context, key, value string) error {
	query := d.DB.Rebind(fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, d.table))
	if _, err := d.DB.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save setting %q: %w", key, err)
	}
	d.Logger.Debug("Saved setting %s", key)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SettingsDB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
