package settings

import (
	"context"
	"errors"
	"testing"

	"market-assistant/src/helpers"
	"market-assistant/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]string
	failOn string
}

func newMemoryStore() *memoryStore { return &memoryStore{values: map[string]string{}} }

func (m *memoryStore) Initialize() error { return nil }
func (m *memoryStore) Close() error      { return nil }

func (m *memoryStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStore) SetSetting(ctx context.Context, key, value string) error {
	if key == m.failOn {
		return errors.New("disk full")
	}
	m.values[key] = value
	return nil
}

func TestLoadFallsBackToDefault(t *testing.T) {
	creds := NewCredentials(newMemoryStore(), "default-key", nil)
	require.NoError(t, creds.Load(context.Background()))
	assert.Equal(t, "default-key", creds.APIKey())
}

func TestLoadRestoresSavedKey(t *testing.T) {
	store := newMemoryStore()
	store.values[KeyAPIKey] = "saved-key"
	creds := NewCredentials(store, "default-key", nil)
	require.NoError(t, creds.Load(context.Background()))
	assert.Equal(t, "saved-key", creds.APIKey())
}

func TestSetAPIKeyPersists(t *testing.T) {
	store := newMemoryStore()
	creds := NewCredentials(store, "default-key", nil)
	require.NoError(t, creds.SetAPIKey(context.Background(), "  new-key "))
	assert.Equal(t, "new-key", creds.APIKey())
	assert.Equal(t, "new-key", store.values[KeyAPIKey])
}

func TestSetAPIKeyRejectsEmpty(t *testing.T) {
	store := newMemoryStore()
	store.values[KeyAPIKey] = "saved-key"
	creds := NewCredentials(store, "default-key", nil)
	require.NoError(t, creds.Load(context.Background()))

	err := creds.SetAPIKey(context.Background(), "   ")
	assert.True(t, helpers.IsKind(err, helpers.KindValidation))
	assert.Equal(t, "saved-key", creds.APIKey())
	assert.Equal(t, "saved-key", store.values[KeyAPIKey])
}

func TestSetAPIKeyKeepsOldKeyWhenSaveFails(t *testing.T) {
	store := newMemoryStore()
	store.failOn = KeyAPIKey
	creds := NewCredentials(store, "default-key", nil)
	assert.Error(t, creds.SetAPIKey(context.Background(), "new-key"))
	assert.Equal(t, "default-key", creds.APIKey())
}

func TestSelectionRoundTrip(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	_, ok, err := LoadSelection(ctx, store)
	require.NoError(t, err)
	assert.False(t, ok)

	sel := models.MChartSelection{Symbol: "TCS.NS", Timeframe: "1y", ChartType: models.ChartTypeCandlestick}
	require.NoError(t, SaveSelection(ctx, store, sel))

	got, ok, err := LoadSelection(ctx, store)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sel, got)
}
