package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	LogFile    string            `yaml:"log_file"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Assistant  MAssistantConfig  `yaml:"assistant"`
	Chart      MChartConfig      `yaml:"chart"`
	Capture    MCaptureConfig    `yaml:"capture"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
	RelayURL       string   `yaml:"relay_url"`
	RelayMode      string   `yaml:"relay_mode"` // wrapped | raw | none
}

type MDataSourceConfig struct {
	ChartURL              string         `yaml:"chart_url"`
	SearchURL             string         `yaml:"search_url"`
	DefaultSymbol         string         `yaml:"default_symbol"`
	DefaultTimeframe      string         `yaml:"default_timeframe"`
	DefaultChartType      string         `yaml:"default_chart_type"`
	UpdateIntervalSeconds int            `yaml:"update_interval_seconds"`
	OnlyWhenMarketOpen    bool           `yaml:"only_when_market_open"`
	Exchanges             []string       `yaml:"exchanges"`
	IndexMarket           string         `yaml:"index_market"`
	PopularSymbols        []MPopularItem `yaml:"popular_symbols"`
}

type MPopularItem struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

type MAssistantConfig struct {
	Endpoint        string  `yaml:"endpoint"`
	APIKey          string  `yaml:"api_key"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`
	TimeoutSeconds  int     `yaml:"timeout"`
}

type MChartConfig struct {
	Timezone        string `yaml:"timezone"`
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	IncreasingColor string `yaml:"increasing_color"`
	DecreasingColor string `yaml:"decreasing_color"`
	LineColor       string `yaml:"line_color"`
}

type MCaptureConfig struct {
	Enabled        bool   `yaml:"enabled"`
	RemoteURL      string `yaml:"remote_url"` // empty starts a local headless browser
	PageURL        string `yaml:"page_url"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// LogSettings exposes the logging section to the logger package.
func (c *MConfig) LogSettings() (string, string) {
	if c == nil {
		return "", ""
	}
	return c.LogLevel, c.LogFile
}
