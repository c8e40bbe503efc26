package grpc_control

import "market-assistant/src/models"

type Empty struct{}

type StatusResponse struct {
	Selection     models.MChartSelection `json:"selection"`
	Generation    uint64                 `json:"generation"`
	Loading       bool                   `json:"loading"`
	Error         string                 `json:"error,omitempty"`
	LastUpdated   int64                  `json:"last_updated"` // unix ms, 0 before the first load
	PointCount    int32                  `json:"point_count"`
	CandleCount   int32                  `json:"candle_count"`
	HasCredential bool                   `json:"has_credential"`
}

type SetSelectionRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	ChartType string `json:"chart_type"`
}

type SetCredentialRequest struct {
	APIKey string `json:"api_key"`
}

type ControlResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Status  *StatusResponse `json:"status,omitempty"`
}
