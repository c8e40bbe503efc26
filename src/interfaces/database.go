package interfaces

import "context"

// -----------------------------------------------------------------------------
// ISettingsStore persists small string settings under stable keys.
// -----------------------------------------------------------------------------

type ISettingsStore interface {

	// Initialize sets up the database schema.
	Initialize() error

	// GetSetting returns the stored value and whether the key exists.
	GetSetting(ctx context.Context, key string) (string, bool, error)

	// SetSetting inserts or replaces the value under key.
	SetSetting(ctx context.Context, key, value string) error

	// Close the database connection
	Close() error
}
