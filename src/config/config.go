package config

import (
	"fmt"
	"os"
	"strconv"

	"market-assistant/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvDBPath = "MARKET_ASSISTANT_DB_PATH"
	EnvPort   = "MARKET_ASSISTANT_PORT"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal on top of the defaults
	config := Default()
	if err := yaml.Unmarshal(data, config.MConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	// 3. .env file and process environment win over the file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	config.ApplyEnv()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a configuration usable without any file.
func Default() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "market-assistant",
		Host:     "127.0.0.1",
		Port:     8000,
		LogLevel: "INFO",
		GrpcPort: 50051,
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: "market_assistant.db",
		},
		Network: models.MNetworkConfig{
			RequestTimeout: 15,
			MaxRetries:     0,
			RelayURL:       "https://api.allorigins.win/get?url=",
			RelayMode:      "wrapped",
		},
		DataSource: models.MDataSourceConfig{
			ChartURL:              "https://query1.finance.yahoo.com/v8/finance/chart",
			SearchURL:             "https://query1.finance.yahoo.com/v1/finance/search",
			DefaultSymbol:         "ADANIENT.NS",
			DefaultTimeframe:      "1mo",
			DefaultChartType:      models.ChartTypeLine,
			UpdateIntervalSeconds: 60,
			Exchanges:             []string{"NSI", "BSE"},
			IndexMarket:           "in_market",
			PopularSymbols: []models.MPopularItem{
				{Symbol: "^NSEI", Name: "NIFTY 50"},
				{Symbol: "^BSESN", Name: "SENSEX"},
				{Symbol: "ADANIENT.NS", Name: "Adani Enterprises"},
				{Symbol: "RELIANCE.NS", Name: "Reliance Industries"},
				{Symbol: "TCS.NS", Name: "Tata Consultancy Services"},
				{Symbol: "HDFCBANK.NS", Name: "HDFC Bank"},
			},
		},
		Assistant: models.MAssistantConfig{
			Endpoint:        "https://generativelanguage.googleapis.com/v1/models/gemini-2.0-flash:generateContent",
			MaxOutputTokens: 350,
			Temperature:     0.2,
			TimeoutSeconds:  30,
		},
		Chart: models.MChartConfig{
			Timezone:        "Asia/Kolkata",
			Width:           960,
			Height:          420,
			IncreasingColor: "#16a34a",
			DecreasingColor: "#dc2626",
			LineColor:       "#10b981",
		},
		Capture: models.MCaptureConfig{
			TimeoutSeconds: 20,
		},
	}}
}

// -----------------------------------------------------------------------------

// ApplyEnv copies environment overrides into the configuration.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Assistant.APIKey = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	switch c.Network.RelayMode {
	case "wrapped", "raw":
		if c.Network.RelayURL == "" {
			return fmt.Errorf("relay url cannot be empty for relay mode %q", c.Network.RelayMode)
		}
	case "none", "":
	default:
		return fmt.Errorf("unknown relay mode: %q", c.Network.RelayMode)
	}

	// DataSource
	ds := c.DataSource
	if ds.ChartURL == "" || ds.SearchURL == "" {
		return fmt.Errorf("chart and search urls must be configured")
	}
	if ds.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("update interval must be greater than 0")
	}
	if _, ok := models.LookupTimeframe(ds.DefaultTimeframe); !ok {
		return fmt.Errorf("unknown default timeframe: %q", ds.DefaultTimeframe)
	}
	if ds.DefaultChartType != models.ChartTypeLine && ds.DefaultChartType != models.ChartTypeCandlestick {
		return fmt.Errorf("unknown default chart type: %q", ds.DefaultChartType)
	}
	if ds.DefaultSymbol == "" {
		return fmt.Errorf("default symbol cannot be empty")
	}

	// Assistant
	if c.Assistant.Endpoint == "" {
		return fmt.Errorf("assistant endpoint cannot be empty")
	}
	if c.Assistant.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be greater than 0")
	}
	if c.Assistant.Temperature < 0 || c.Assistant.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2]")
	}

	if c.Capture.Enabled && c.Capture.PageURL == "" {
		return fmt.Errorf("capture page url cannot be empty when capture is enabled")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
