package models

import "time"

// Chart types
const (
	ChartTypeLine        = "line"
	ChartTypeCandlestick = "candlestick"
)

type MChartSelection struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	ChartType string `json:"chartType"`
}

// -----------------------------------------------------------------------------

// MTimeframe pairs a displayed range with the bar interval requested for it.
type MTimeframe struct {
	Range    string `json:"range"`
	Interval string `json:"interval"`
	Label    string `json:"label"`
	Intraday bool   `json:"intraday"`
}

var Timeframes = []MTimeframe{
	{Range: "5m", Interval: "1m", Label: "5 Min", Intraday: true},
	{Range: "1h", Interval: "5m", Label: "1 Hour", Intraday: true},
	{Range: "1d", Interval: "15m", Label: "1 Day", Intraday: true},
	{Range: "5d", Interval: "30m", Label: "5 Days"},
	{Range: "1mo", Interval: "1d", Label: "1 Month"},
	{Range: "3mo", Interval: "1d", Label: "3 Months"},
	{Range: "6mo", Interval: "1d", Label: "6 Months"},
	{Range: "1y", Interval: "1wk", Label: "1 Year"},
	{Range: "5y", Interval: "1mo", Label: "5 Years"},
}

// LookupTimeframe returns the table entry for a range string.
func LookupTimeframe(rangeStr string) (MTimeframe, bool) {
	for _, tf := range Timeframes {
		if tf.Range == rangeStr {
			return tf, true
		}
	}
	return MTimeframe{}, false
}

// -----------------------------------------------------------------------------
// Dashboard state pushed to websocket clients
// -----------------------------------------------------------------------------

type MDashboardSnapshot struct {
	Selection   MChartSelection `json:"selection"`
	Series      MSeries         `json:"series"`
	Stats       *MSeriesStats   `json:"stats,omitempty"`
	Loading     bool            `json:"loading"`
	Error       string          `json:"error,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Generation  uint64          `json:"generation"`
}

type MDashboardUpdate struct {
	Type     string             `json:"type"` // "INITIAL" or "UPDATE"
	Snapshot MDashboardSnapshot `json:"snapshot"`
}

// Update types
const (
	UpdateInitial = "INITIAL"
	UpdateState   = "UPDATE"
)

// MClientCommand is sent by websocket clients.
type MClientCommand struct {
	Command   string `json:"command"` // "select" or "refresh"
	Symbol    string `json:"symbol,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
	ChartType string `json:"chartType,omitempty"`
}
