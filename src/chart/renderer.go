package chart

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Kolkata on hosts without a zoneinfo database

	"market-assistant/src/analysis"
	"market-assistant/src/analysis/core"
	"market-assistant/src/helpers"
	"market-assistant/src/models"

	svg "github.com/ajstarks/svgo"
)

// -----------------------------------------------------------------------------
// Model
// -----------------------------------------------------------------------------

type Point struct {
	Timestamp int64   `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Value     float64 `json:"value"`
	Label     string  `json:"label"`
}

type Tick struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

type Header struct {
	Symbol  string `json:"symbol"`
	Price   string `json:"price"`
	Change  string `json:"change"`
	Upward  bool   `json:"upward"`
	Caption string `json:"caption"`
}

// Model is the fully laid out chart, independent of the output format.
type Model struct {
	ChartType string  `json:"chartType"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Plot      Rect    `json:"plot"`
	Header    Header  `json:"header"`
	Line      []Point `json:"line,omitempty"`
	Candles   []Glyph `json:"candles,omitempty"`
	XTicks    []Tick  `json:"xTicks"`
	YTicks    []Tick  `json:"yTicks"`
}

// -----------------------------------------------------------------------------
// Renderer
// -----------------------------------------------------------------------------

// Renderer lays out line and candlestick charts with one theme.
type Renderer struct {
	Theme    Theme
	Location *time.Location
}

func NewRenderer(cfg models.MChartConfig) (*Renderer, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, helpers.NewError(helpers.KindValidation, fmt.Sprintf("unknown timezone %q", cfg.Timezone), err)
		}
		loc = l
	}
	return &Renderer{Theme: ThemeFromConfig(cfg), Location: loc}, nil
}

// -----------------------------------------------------------------------------

// Build lays out series for the selection. An empty active series is a
// no-data error.
func (r *Renderer) Build(series models.MSeries, sel models.MChartSelection) (Model, error) {
	tf, _ := models.LookupTimeframe(sel.Timeframe)
	plot := r.Theme.plotRect()
	m := Model{
		ChartType: sel.ChartType,
		Width:     r.Theme.Width,
		Height:    r.Theme.Height,
		Plot:      plot,
	}

	stats, ok := analysis.Summarize(series, sel.ChartType)
	if !ok {
		return m, helpers.NewError(helpers.KindNoData, helpers.MsgNoData, nil)
	}
	m.Header = Header{
		Symbol:  sel.Symbol,
		Price:   FormatCurrency(sel.Symbol, stats.Last),
		Change:  FormatChange(stats.Change, stats.ChangePercent),
		Upward:  stats.Upward,
		Caption: tf.Label,
	}

	timestamps := r.timestamps(series, sel.ChartType)
	inset := 0.0
	if sel.ChartType == models.ChartTypeCandlestick {
		inset = plot.Width / float64(len(timestamps)) / 2
	}
	xScale := LinearScale{
		D0: float64(timestamps[0]), D1: float64(timestamps[len(timestamps)-1]),
		R0: plot.X + inset, R1: plot.X + plot.Width - inset,
	}
	low, high := r.yDomain(series, sel.ChartType)
	yScale := LinearScale{D0: low, D1: high, R0: plot.Y + plot.Height, R1: plot.Y}

	if sel.ChartType == models.ChartTypeCandlestick {
		slot := inset * 2
		for _, c := range series.Candles {
			top := yScale.Map(c.High)
			x := xScale.Map(float64(c.Timestamp)) - slot/2
			g, ok := CandleGlyph(x, top, slot, yScale.Map(c.Low)-top, c, r.Theme)
			if !ok {
				continue
			}
			g.Label = TooltipLabel(c.Timestamp, tf.Intraday, r.Location)
			m.Candles = append(m.Candles, g)
		}
	} else {
		m.Line = make([]Point, 0, len(series.Points))
		for _, p := range series.Points {
			m.Line = append(m.Line, Point{
				Timestamp: p.Timestamp,
				X:         xScale.Map(float64(p.Timestamp)),
				Y:         yScale.Map(p.Price),
				Value:     p.Price,
				Label:     TooltipLabel(p.Timestamp, tf.Intraday, r.Location),
			})
		}
	}

	m.XTicks = r.xTicks(timestamps, xScale, tf.Intraday)
	m.YTicks = r.yTicks(sel.Symbol, low, high, yScale)
	return m, nil
}

// -----------------------------------------------------------------------------

func (r *Renderer) timestamps(series models.MSeries, chartType string) []int64 {
	if chartType == models.ChartTypeCandlestick {
		out := make([]int64, len(series.Candles))
		for i, c := range series.Candles {
			out[i] = c.Timestamp
		}
		return out
	}
	out := make([]int64, len(series.Points))
	for i, p := range series.Points {
		out[i] = p.Timestamp
	}
	return out
}

// yDomain auto-scales to the data with a 5% margin.
func (r *Renderer) yDomain(series models.MSeries, chartType string) (float64, float64) {
	var values []float64
	if chartType == models.ChartTypeCandlestick {
		for _, c := range series.Candles {
			values = append(values, c.Low, c.High)
		}
	} else {
		values = analysis.Values(series, chartType)
	}

	low, high, _ := core.PriceRange(values)
	pad := (high - low) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(high)*0.01, 1)
	}
	return low - pad, high + pad
}

func (r *Renderer) xTicks(timestamps []int64, scale LinearScale, intraday bool) []Tick {
	n := r.Theme.XTickCount
	if n > len(timestamps) {
		n = len(timestamps)
	}
	if n <= 0 {
		return nil
	}

	ticks := make([]Tick, 0, n)
	last := -1
	for i := 0; i < n; i++ {
		idx := 0
		if n > 1 {
			idx = i * (len(timestamps) - 1) / (n - 1)
		}
		if idx == last {
			continue
		}
		last = idx
		ts := timestamps[idx]
		ticks = append(ticks, Tick{
			Position: scale.Map(float64(ts)),
			Label:    TickLabel(ts, intraday, r.Location),
		})
	}
	return ticks
}

func (r *Renderer) yTicks(symbol string, low, high float64, scale LinearScale) []Tick {
	n := r.Theme.YTickCount
	if n < 2 {
		n = 2
	}
	ticks := make([]Tick, 0, n)
	step := (high - low) / float64(n-1)
	for i := 0; i < n; i++ {
		v := low + step*float64(i)
		ticks = append(ticks, Tick{Position: scale.Map(v), Label: FormatCurrency(symbol, v)})
	}
	return ticks
}

// -----------------------------------------------------------------------------
// SVG output
// -----------------------------------------------------------------------------

// WriteSVG draws a laid out model.
func (r *Renderer) WriteSVG(w io.Writer, m Model) {
	t := r.Theme
	canvas := svg.New(w)
	canvas.Start(m.Width, m.Height)
	canvas.Title(strings.TrimSpace(m.Header.Symbol + " " + m.Header.Caption))
	canvas.Rect(0, 0, m.Width, m.Height, "fill:"+t.Background)

	textStyle := fmt.Sprintf("fill:%s;font-family:%s;font-size:%dpx", t.TextColor, t.FontFamily, t.FontSize)
	plotLeft, plotRight := px(m.Plot.X), px(m.Plot.X+m.Plot.Width)
	plotBottom := px(m.Plot.Y + m.Plot.Height)

	for _, tick := range m.YTicks {
		y := px(tick.Position)
		canvas.Line(plotLeft, y, plotRight, y, "stroke:"+t.GridColor)
		canvas.Text(plotLeft-6, y+4, tick.Label, textStyle+";text-anchor:end")
	}
	for _, tick := range m.XTicks {
		canvas.Text(px(tick.Position), plotBottom+t.FontSize+8, tick.Label, textStyle+";text-anchor:middle")
	}

	if len(m.Line) > 0 {
		xs := make([]int, len(m.Line))
		ys := make([]int, len(m.Line))
		for i, p := range m.Line {
			xs[i], ys[i] = px(p.X), px(p.Y)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", t.LineColor, t.LineWidth))
	}

	for _, g := range m.Candles {
		canvas.Line(px(g.WickX), px(g.WickTop), px(g.WickX), px(g.WickBottom), "stroke:"+g.Color)
		canvas.Rect(px(g.BodyX), px(g.BodyY), int(math.Max(1, math.Round(g.BodyWidth))), int(math.Max(1, math.Round(g.BodyHeight))), "fill:"+g.Color)
	}

	headerColor := t.DecreasingColor
	if m.Header.Upward {
		headerColor = t.IncreasingColor
	}
	canvas.Text(plotLeft, t.PaddingTop-4, m.Header.Price+"  "+m.Header.Change, fmt.Sprintf("fill:%s;font-family:%s;font-size:%dpx", headerColor, t.FontFamily, t.FontSize+2))
	canvas.End()
}

func px(v float64) int {
	return int(math.Round(v))
}
