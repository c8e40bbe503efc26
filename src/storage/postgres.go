package storage

import (
	"fmt"
	"strings"

	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresSettingsDB struct {
	SettingsDB
	Schema string
}

// -----------------------------------------------------------------------------

// NewPostgresSettingsDB keeps its table in a schema named after the
// application.
func NewPostgresSettingsDB(cfg *models.MConfig, log *logger.Logger) *PostgresSettingsDB {
	schema := strings.ReplaceAll(strings.ToLower(cfg.Name), "-", "_")
	if schema == "" {
		schema = "public"
	}
	return &PostgresSettingsDB{
		SettingsDB: SettingsDB{Config: cfg, Logger: log, table: fmt.Sprintf(`"%s".settings`, schema)},
		Schema:     schema,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresSettingsDB) Initialize() error {
	db, err := sqlx.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}
	return d.createTable()
}
