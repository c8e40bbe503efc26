package chart

import (
	"bytes"
	"testing"

	"market-assistant/src/helpers"
	"market-assistant/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(models.MChartConfig{Timezone: "Asia/Kolkata"})
	require.NoError(t, err)
	return r
}

func sampleSeries() models.MSeries {
	return models.MSeries{
		Symbol:    "TCS.NS",
		Timeframe: "1mo",
		Points: []models.MQuotePoint{
			{Timestamp: 1710000000000, Price: 100},
			{Timestamp: 1710086400000, Price: 110},
			{Timestamp: 1710172800000, Price: 105},
		},
		Candles: []models.MCandle{
			{Timestamp: 1710000000000, Open: 98, Close: 100, High: 101, Low: 97, IsIncreasing: true},
			{Timestamp: 1710086400000, Open: 100, Close: 110, High: 111, Low: 99, IsIncreasing: true},
			{Timestamp: 1710172800000, Open: 110, Close: 105, High: 110, Low: 104},
			{Timestamp: 1710259200000, Open: 105, Close: 105, High: 105, Low: 105, IsIncreasing: true},
		},
	}
}

func TestBuildLine(t *testing.T) {
	r := newTestRenderer(t)
	sel := models.MChartSelection{Symbol: "TCS.NS", Timeframe: "1mo", ChartType: models.ChartTypeLine}

	m, err := r.Build(sampleSeries(), sel)
	require.NoError(t, err)

	require.Len(t, m.Line, 3)
	assert.Equal(t, m.Plot.X, m.Line[0].X)
	assert.Equal(t, m.Plot.X+m.Plot.Width, m.Line[2].X)
	// highest price sits highest on screen
	assert.Less(t, m.Line[1].Y, m.Line[0].Y)
	assert.Less(t, m.Line[1].Y, m.Line[2].Y)
	assert.Equal(t, "₹105.00", m.Header.Price)
	assert.Equal(t, "+5.00 (+5.00%)", m.Header.Change)
	assert.True(t, m.Header.Upward)
	assert.Equal(t, "Mar 9", m.XTicks[0].Label)
	assert.Len(t, m.YTicks, 5)
}

func TestBuildCandlesSkipsDegenerate(t *testing.T) {
	r := newTestRenderer(t)
	sel := models.MChartSelection{Symbol: "TCS.NS", Timeframe: "1mo", ChartType: models.ChartTypeCandlestick}

	m, err := r.Build(sampleSeries(), sel)
	require.NoError(t, err)
	require.Len(t, m.Candles, 3)
	assert.Equal(t, r.Theme.DecreasingColor, m.Candles[2].Color)
	for _, g := range m.Candles {
		assert.GreaterOrEqual(t, g.BodyY, g.WickTop)
		assert.LessOrEqual(t, g.BodyY+g.BodyHeight, g.WickBottom+1)
	}
}

func TestBuildEmptyIsNoData(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.Build(models.MSeries{}, models.MChartSelection{Symbol: "X", Timeframe: "1d", ChartType: models.ChartTypeLine})
	assert.True(t, helpers.IsKind(err, helpers.KindNoData))
}

func TestWriteSVG(t *testing.T) {
	r := newTestRenderer(t)
	sel := models.MChartSelection{Symbol: "^NSEI", Timeframe: "1d", ChartType: models.ChartTypeCandlestick}

	m, err := r.Build(sampleSeries(), sel)
	require.NoError(t, err)

	var buf bytes.Buffer
	r.WriteSVG(&buf, m)
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, "<rect")
	assert.Contains(t, out, r.Theme.IncreasingColor)
	assert.NotContains(t, out, "₹")
}
