package storage

import (
	"context"
	"path/filepath"
	"testing"

	"market-assistant/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSettingsRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "settings.db")

	store, err := Open(cfg.MConfig)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	_, ok, err := store.GetSetting(ctx, "geminiApiKey")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetSetting(ctx, "geminiApiKey", "first"))
	require.NoError(t, store.SetSetting(ctx, "geminiApiKey", "second"))

	v, ok, err := store.GetSetting(ctx, "geminiApiKey")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestSQLiteSettingsSurviveReopen(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "settings.db")
	ctx := context.Background()

	store, err := Open(cfg.MConfig)
	require.NoError(t, err)
	require.NoError(t, store.SetSetting(ctx, "chartSelection", `{"symbol":"TCS.NS"}`))
	require.NoError(t, store.Close())

	store, err = Open(cfg.MConfig)
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.GetSetting(ctx, "chartSelection")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"symbol":"TCS.NS"}`, v)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DBType = "mongo"
	_, err := Open(cfg.MConfig)
	assert.Error(t, err)
}

func TestPostgresTableLivesInAppSchema(t *testing.T) {
	cfg := config.Default()
	db := NewPostgresSettingsDB(cfg.MConfig, nil)
	assert.Equal(t, "market_assistant", db.Schema)
	assert.Equal(t, `"market_assistant".settings`, db.table)
}
