package analysis

import (
	"market-assistant/src/analysis/core"
	"market-assistant/src/models"
)

// maxSamples bounds how many points are quoted to the assistant.
const maxSamples = 20

// -----------------------------------------------------------------------------

// Values returns the series values of the active chart mode: close prices for
// line charts, candle closes for candlestick charts.
func Values(series models.MSeries, chartType string) []float64 {
	if chartType == models.ChartTypeCandlestick {
		out := make([]float64, len(series.Candles))
		for i, c := range series.Candles {
			out[i] = c.Close
		}
		return out
	}
	out := make([]float64, len(series.Points))
	for i, p := range series.Points {
		out[i] = p.Price
	}
	return out
}

// -----------------------------------------------------------------------------

// Summarize computes first/last/change for the active chart mode. ok is false
// when the series is empty.
func Summarize(series models.MSeries, chartType string) (models.MSeriesStats, bool) {
	values := Values(series, chartType)
	if len(values) == 0 {
		return models.MSeriesStats{}, false
	}

	first, last := values[0], values[len(values)-1]
	change := last - first
	return models.MSeriesStats{
		First:         first,
		Last:          last,
		Change:        core.Round2(change),
		ChangePercent: core.Round2(core.CalculateChangePercent(last, first) * 100),
		Upward:        change >= 0,
	}, true
}

// -----------------------------------------------------------------------------

// SampleIndices picks at most 20 evenly strided indices out of n, with
// stride = max(1, floor(n/20)).
func SampleIndices(n int) []int {
	if n <= 0 {
		return nil
	}
	stride := n / maxSamples
	if stride < 1 {
		stride = 1
	}
	out := make([]int, 0, maxSamples)
	for i := 0; i < n && len(out) < maxSamples; i += stride {
		out = append(out, i)
	}
	return out
}
