package assistant

import (
	"fmt"
	"strings"
	"time"

	"market-assistant/src/analysis"
	"market-assistant/src/helpers"
	"market-assistant/src/models"
)

const instruction = `You are a professional Indian stock market analyst. Analyze the chart data below and reply with exactly these five labelled sections, each on its own line:
RECOMMENDATION: a direct BUY, SELL or HOLD call for this stock
TARGET PRICE: a target or exit price
PATTERNS: the named chart patterns visible in the data
SUPPORT: the key support levels
RESISTANCE: the key resistance levels
Base every statement only on the data provided. Do not add general market commentary.`

// connectionProbe is the minimal round trip used by TestConnection.
const connectionProbe = "Respond with 'API Connection Successful' if you receive this message."

// -----------------------------------------------------------------------------

// BuildPrompt renders the instruction, the derived summary and up to 20
// evenly sampled points of the active chart mode.
func BuildPrompt(series models.MSeries, sel models.MChartSelection, loc *time.Location) (string, error) {
	stats, ok := analysis.Summarize(series, sel.ChartType)
	if !ok {
		return "", helpers.NewError(helpers.KindNoData, "No chart data available for analysis.", nil)
	}
	if loc == nil {
		loc = time.UTC
	}

	tf, found := models.LookupTimeframe(sel.Timeframe)
	tfLabel := sel.Timeframe
	if found {
		tfLabel = tf.Label
	}
	trend := "Downward"
	if stats.Upward {
		trend = "Upward"
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Current Stock: %s\n", DisplaySymbol(sel.Symbol))
	fmt.Fprintf(&b, "Timeframe: %s\n", tfLabel)
	fmt.Fprintf(&b, "Chart Type: %s\n", sel.ChartType)
	fmt.Fprintf(&b, "Current Price: %.2f\n", stats.Last)
	fmt.Fprintf(&b, "Change: %+.2f (%+.2f%%)\n", stats.Change, stats.ChangePercent)
	fmt.Fprintf(&b, "Trend Direction: %s\n", trend)
	b.WriteString("\nSample Data Points:\n")
	for _, line := range SampleLines(series, sel.ChartType, tf.Intraday, loc) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// -----------------------------------------------------------------------------

// SampleLines formats the sampled points: "time: price" for line charts and
// "time: Open=o, Close=c, High=h, Low=l" for candlesticks.
func SampleLines(series models.MSeries, chartType string, intraday bool, loc *time.Location) []string {
	layout := "02 Jan 2006"
	if intraday {
		layout = "02 Jan 2006 15:04"
	}
	stamp := func(ms int64) string { return time.UnixMilli(ms).In(loc).Format(layout) }

	if chartType == models.ChartTypeCandlestick {
		idx := analysis.SampleIndices(len(series.Candles))
		out := make([]string, 0, len(idx))
		for _, i := range idx {
			c := series.Candles[i]
			out = append(out, fmt.Sprintf("%s: Open=%.2f, Close=%.2f, High=%.2f, Low=%.2f", stamp(c.Timestamp), c.Open, c.Close, c.High, c.Low))
		}
		return out
	}

	idx := analysis.SampleIndices(len(series.Points))
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		p := series.Points[i]
		out = append(out, fmt.Sprintf("%s: %.2f", stamp(p.Timestamp), p.Price))
	}
	return out
}

// DisplaySymbol strips the NSE suffix for display.
func DisplaySymbol(symbol string) string {
	return strings.TrimSuffix(symbol, ".NS")
}
