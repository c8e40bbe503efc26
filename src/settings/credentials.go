package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"
)

// Setting keys
const (
	KeyAPIKey    = "geminiApiKey"
	KeySelection = "chartSelection"
)

// Credentials holds the active provider key and persists replacements.
type Credentials struct {
	mu       sync.RWMutex
	key      string
	fallback string
	store    interfaces.ISettingsStore
	logger   *logger.Logger
}

// -----------------------------------------------------------------------------

// NewCredentials starts with fallback as the active key. Call Load to
// restore a previously saved one.
func NewCredentials(store interfaces.ISettingsStore, fallback string, l *logger.Logger) *Credentials {
	if l == nil {
		l = logger.NewLogger(nil, "Credentials")
	}
	return &Credentials{key: fallback, fallback: fallback, store: store, logger: l}
}

// -----------------------------------------------------------------------------

// Load restores the saved key, keeping the fallback when none is stored.
func (c *Credentials) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	value, ok, err := c.store.GetSetting(ctx, KeyAPIKey)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if !ok || strings.TrimSpace(value) == "" {
		c.logger.Debug("No saved API key, using configured default")
		return nil
	}

	c.mu.Lock()
	c.key = value
	c.mu.Unlock()
	c.logger.Info("Restored saved API key")
	return nil
}

// -----------------------------------------------------------------------------

func (c *Credentials) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

// -----------------------------------------------------------------------------

// SetAPIKey replaces the active key. An empty key is a validation error and
// leaves both the active and the stored key untouched.
func (c *Credentials) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return helpers.NewError(helpers.KindValidation, "Please provide a valid API key after the /apikey command.", nil)
	}

	if c.store != nil {
		if err := c.store.SetSetting(ctx, KeyAPIKey, key); err != nil {
			return fmt.Errorf("save credential: %w", err)
		}
	}

	c.mu.Lock()
	c.key = key
	c.mu.Unlock()
	c.logger.Info("API key updated")
	return nil
}

// -----------------------------------------------------------------------------
// Selection persistence
// -----------------------------------------------------------------------------

// LoadSelection returns the last saved chart selection, if any.
func LoadSelection(ctx context.Context, store interfaces.ISettingsStore) (models.MChartSelection, bool, error) {
	var sel models.MChartSelection
	if store == nil {
		return sel, false, nil
	}
	value, ok, err := store.GetSetting(ctx, KeySelection)
	if err != nil || !ok {
		return sel, false, err
	}
	if err := json.Unmarshal([]byte(value), &sel); err != nil {
		return sel, false, helpers.NewError(helpers.KindMalformedResponse, "invalid saved selection", err)
	}
	return sel, true, nil
}

func SaveSelection(ctx context.Context, store interfaces.ISettingsStore, sel models.MChartSelection) error {
	if store == nil {
		return nil
	}
	data, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return store.SetSetting(ctx, KeySelection, string(data))
}
