package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestNewConfigOverlaysDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvPort, "")
	path := writeConfig(t, `
port: 9100
data_source:
  default_symbol: TCS.NS
  default_timeframe: 1y
`)
	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "TCS.NS", cfg.DataSource.DefaultSymbol)
	assert.Equal(t, "1y", cfg.DataSource.DefaultTimeframe)
	assert.Equal(t, 350, cfg.Assistant.MaxOutputTokens)
	assert.Equal(t, "wrapped", cfg.Network.RelayMode)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvPort, "9200")
	t.Setenv(EnvDBPath, "/tmp/other.db")

	cfg, err := NewConfig(writeConfig(t, "name: market-assistant\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Assistant.APIKey)
	assert.Equal(t, 9200, cfg.Port)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.DBPath)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"port":       func(c *Config) { c.Port = 80 },
		"db type":    func(c *Config) { c.Storage.DBType = "mongo" },
		"relay mode": func(c *Config) { c.Network.RelayMode = "tunnel" },
		"timeframe":  func(c *Config) { c.DataSource.DefaultTimeframe = "2w" },
		"chart type": func(c *Config) { c.DataSource.DefaultChartType = "bar" },
		"tokens":     func(c *Config) { c.Assistant.MaxOutputTokens = 0 },
		"capture":    func(c *Config) { c.Capture.Enabled = true; c.Capture.PageURL = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), "saved.yaml")
	c := Default()
	c.DataSource.DefaultSymbol = "INFY.NS"
	require.NoError(t, c.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "INFY.NS", loaded.DataSource.DefaultSymbol)
	assert.Equal(t, c.DataSource.PopularSymbols, loaded.DataSource.PopularSymbols)
}

func TestMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
