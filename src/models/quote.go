package models

// MQuotePoint is one close price sample of a series. Timestamp is epoch milliseconds.
type MQuotePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    int64   `json:"volume"`
}

// MCandle is one OHLC bar. Only envelope-valid bars are ever constructed
// (High >= max(Open, Close) and Low <= min(Open, Close)).
type MCandle struct {
	Timestamp    int64   `json:"timestamp"`
	Open         float64 `json:"open"`
	Close        float64 `json:"close"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Volume       int64   `json:"volume"`
	IsIncreasing bool    `json:"isIncreasing"`
}

// MSeries is everything loaded for one (symbol, timeframe) pair.
type MSeries struct {
	Symbol    string        `json:"symbol"`
	Timeframe string        `json:"timeframe"`
	Points    []MQuotePoint `json:"points"`
	Candles   []MCandle     `json:"candles"`
}

// -----------------------------------------------------------------------------

type MSymbolSuggestion struct {
	Symbol      string `json:"symbol"`
	DisplayName string `json:"displayName"`
}

// -----------------------------------------------------------------------------

// MSeriesStats is the summary shown in the chart header and fed to the assistant.
type MSeriesStats struct {
	First         float64 `json:"first"`
	Last          float64 `json:"last"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Upward        bool    `json:"upward"`
}
